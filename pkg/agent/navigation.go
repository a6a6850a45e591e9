package agent

import (
	"context"
	"time"

	"github.com/entrhq/scout/pkg/types"
)

// performNavigation follows a model-emitted navigation directive. The load
// is atomic: on success the session swaps to the new resource with history
// preserved; on failure the prior resource and history are intact and the
// operator is notified. The model is not re-invoked; the next user turn
// drives it against the new source.
func (a *DefaultAgent) performNavigation(ctx context.Context, url string) {
	a.setState(StateNavigating)
	a.emitEvent(types.NewNavigationStartEvent(url))

	if a.scope != nil {
		if err := a.scope.ValidateURL(url); err != nil {
			agentDebugLog.Warnf("Navigation denied by scope: %s", url)
			a.emitEvent(types.NewNavigationFailedEvent(url, err))
			a.emitEvent(types.NewErrorEvent(err))
			a.setState(StateLoaded)
			return
		}
	}

	started := time.Now()
	resource, err := a.loader.LoadURL(ctx, url)
	if err != nil {
		agentDebugLog.Errorf("Navigation to %s failed: %v", url, err)
		a.emitEvent(types.NewNavigationFailedEvent(url, err))
		a.emitEvent(types.NewErrorEvent(err))
		a.setState(StateLoaded)
		return
	}

	a.session.LoadViaNavigation(resource)
	agentDebugLog.Infof("Navigated to %s (%d bytes)", url, len(resource.Text))
	a.emitEvent(types.NewNavigationEndEvent(url, time.Since(started).Round(time.Millisecond).String()))
	a.emitEvent(types.NewResourceLoadedEvent(resourceInfo(resource, true)))
	a.setState(StateLoaded)
}

// processManualLoad loads a URL at the operator's request. On success the
// session swaps to the new resource and starts a fresh conversation; on
// failure any prior resource and history survive untouched.
func (a *DefaultAgent) processManualLoad(ctx context.Context, url string) {
	a.emitEvent(types.NewUpdateBusyEvent(true))
	defer a.emitEvent(types.NewUpdateBusyEvent(false))

	a.emitEvent(types.NewLoadStartEvent(url))

	resource, err := a.loader.LoadURL(ctx, url)
	if err != nil {
		agentDebugLog.Errorf("Load of %s failed: %v", url, err)
		a.emitEvent(types.NewErrorEvent(err))
		a.emitEvent(types.NewTurnEndEvent())
		return
	}

	a.session.LoadManual(resource)
	a.emitEvent(types.NewResourceLoadedEvent(resourceInfo(resource, false)))
	a.setState(StateLoaded)
	a.emitEvent(types.NewTurnEndEvent())
}

// processDocumentLoad extracts an uploaded document at the operator's
// request. Same atomicity as processManualLoad.
func (a *DefaultAgent) processDocumentLoad(name string, data []byte) {
	a.emitEvent(types.NewUpdateBusyEvent(true))
	defer a.emitEvent(types.NewUpdateBusyEvent(false))

	sourceID := types.DocumentSourceID(name)
	a.emitEvent(types.NewLoadStartEvent(sourceID))

	resource, err := a.loader.LoadDocument(name, data)
	if err != nil {
		agentDebugLog.Errorf("Load of document %s failed: %v", name, err)
		a.emitEvent(types.NewErrorEvent(err))
		a.emitEvent(types.NewTurnEndEvent())
		return
	}

	a.session.LoadManual(resource)
	a.emitEvent(types.NewResourceLoadedEvent(resourceInfo(resource, false)))
	a.setState(StateLoaded)
	a.emitEvent(types.NewTurnEndEvent())
}

// resourceInfo summarizes a resource for the ResourceLoaded event.
func resourceInfo(resource *types.Resource, viaNavigation bool) *types.ResourceInfo {
	return &types.ResourceInfo{
		SourceID:      resource.SourceID,
		Title:         resource.Title,
		TextBytes:     len(resource.Text),
		LinkCount:     len(resource.Links),
		FileCount:     len(resource.Files),
		Truncated:     resource.Truncated,
		ViaNavigation: viaNavigation,
	}
}
