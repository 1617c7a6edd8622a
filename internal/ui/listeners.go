package ui

import (
	"fmt"
	"sync"

	"github.com/skobkin/webbrowser/internal/bus"
	"github.com/skobkin/webbrowser/internal/connectors"
)

func startPageEventListeners(
	messageBus bus.MessageBus,
	onLoaded func(connectors.PageLoaded),
	onFailed func(connectors.PageFailed),
) func() {
	if messageBus == nil {
		appLogger.Debug("skipping page event listeners: message bus is nil")

		return func() {}
	}

	sub := messageBus.Subscribe(connectors.TopicPageLoaded, connectors.TopicPageFailed)
	appLogger.Debug(
		"subscribed to UI bus topics",
		"topics", []string{connectors.TopicPageLoaded, connectors.TopicPageFailed},
	)
	done := make(chan struct{})
	var stopOnce sync.Once

	go func() {
		for {
			select {
			case <-done:
				return
			case raw, ok := <-sub:
				if !ok {
					appLogger.Debug("page event subscription closed")

					return
				}
				select {
				case <-done:
					return
				default:
				}
				switch event := raw.(type) {
				case connectors.PageLoaded:
					if onLoaded != nil {
						onLoaded(event)
					}
				case connectors.PageFailed:
					if onFailed != nil {
						onFailed(event)
					}
				default:
					appLogger.Debug("ignoring unexpected page event payload", "payload_type", fmt.Sprintf("%T", raw))
				}
			}
		}
	}()

	return func() {
		stopOnce.Do(func() {
			appLogger.Debug("stopping page event listeners")
			close(done)
			messageBus.Unsubscribe(sub, connectors.TopicPageLoaded, connectors.TopicPageFailed)
		})
	}
}
