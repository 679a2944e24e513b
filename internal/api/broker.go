package api

import (
    "sync"
)

type SSEEvent struct {
    Type string
    Data map[string]any
}

type Broker struct {
    mu   sync.Mutex
    subs map[string]map[chan SSEEvent]struct{} // queryId -> set of channels
}

func NewBroker() *Broker {
    return &Broker{subs: map[string]map[chan SSEEvent]struct{}{}}
}

func (b *Broker) Subscribe(queryID string) chan SSEEvent {
    ch := make(chan SSEEvent, 8)
    b.mu.Lock()
    if b.subs[queryID] == nil { b.subs[queryID] = map[chan SSEEvent]struct{}{} }
    b.subs[queryID][ch] = struct{}{}
    b.mu.Unlock()
    return ch
}

func (b *Broker) Unsubscribe(queryID string, ch chan SSEEvent) {
    b.mu.Lock()
    if m := b.subs[queryID]; m != nil {
        delete(m, ch)
        if len(m) == 0 { delete(b.subs, queryID) }
    }
    b.mu.Unlock()
    close(ch)
}

func (b *Broker) Publish(queryID string, evt SSEEvent) {
    b.mu.Lock()
    m := b.subs[queryID]
    for ch := range m {
        select { case ch <- evt: default: }
    }
    b.mu.Unlock()
}
