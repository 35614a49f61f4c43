package appstate

import "sync"

// Origin says where a change came from.
type Origin string

const (
	OriginLocal   Origin = "local"
	OriginStorage Origin = "storage"
	OriginRemote  Origin = "remote"
)

// Event announces that the collection stored under Key changed.
type Event struct {
	Key    string `json:"key"`
	Origin Origin `json:"origin"`
}

type observers struct {
	subMu sync.Mutex
	subs  map[int]func(Event)
	next  int
}

// Subscribe registers fn for every later change and returns a function that
// removes it. fn runs on the writer's goroutine and must not block.
func (o *observers) Subscribe(fn func(Event)) (cancel func()) {
	o.subMu.Lock()
	defer o.subMu.Unlock()
	if o.subs == nil {
		o.subs = make(map[int]func(Event))
	}
	id := o.next
	o.next++
	o.subs[id] = fn
	return func() {
		o.subMu.Lock()
		delete(o.subs, id)
		o.subMu.Unlock()
	}
}

func (o *observers) publish(e Event) {
	o.subMu.Lock()
	fns := make([]func(Event), 0, len(o.subs))
	for _, fn := range o.subs {
		fns = append(fns, fn)
	}
	o.subMu.Unlock()
	for _, fn := range fns {
		fn(e)
	}
}
