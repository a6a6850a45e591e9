package prompts

// ResearchAssistantPrompt sets the assistant's role and grounding rule. The
// fallback sentence is part of the behavior contract: a fixed template plus
// a fixed engine must answer out-of-text questions deterministically.
const ResearchAssistantPrompt = `<role>
You are a helpful research assistant.
Answer the user's questions strictly based on the provided source text.
If the answer is not in the text, simply say "I couldn't find that in the article."
</role>`

// NavigationContractPrompt teaches the model the literal navigation
// directive. The JSON line below is the exact wire format the directive
// parser detects; changing it here breaks detection.
const NavigationContractPrompt = `<navigation>
IMPORTANT: You have the ability to navigate the web.
If the user asks to "follow", "click", or "go to" a specific link found in the source below,
reply with EXACTLY this JSON format and nothing else:
{"action": "navigate", "url": "THE_URL_HERE"}
</navigation>`

// SourceTextHeader labels the document text section of the system prompt.
const SourceTextHeader = "TEXT DATA:"

// LinksHeader labels the link table section of the system prompt.
const LinksHeader = "AVAILABLE LINKS ON THIS PAGE:"
