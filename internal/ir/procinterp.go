package ir

import (
	"fmt"
)

// ProcRunner drives a proc against queue-backed channels. Each Tick is
// one iteration: all nodes evaluate, receives consume from input
// queues, sends append to output queues, and state advances. A tick
// that would receive from an empty FIFO blocks and leaves every queue
// untouched.
type ProcRunner struct {
	Proc   *Proc
	In     map[string][]Value
	Out    map[string][]Value
	Direct map[string]Value

	state []Value
}

func NewProcRunner(p *Proc) *ProcRunner {
	r := &ProcRunner{
		Proc:   p,
		In:     make(map[string][]Value),
		Out:    make(map[string][]Value),
		Direct: make(map[string]Value),
	}
	r.state = append(r.state, p.StateInit...)
	return r
}

func (r *ProcRunner) PushIn(ch string, v Value) {
	r.In[ch] = append(r.In[ch], v)
}

// SetDirect pins the value of a direct-in channel; reads never consume.
func (r *ProcRunner) SetDirect(ch string, v Value) {
	r.Direct[ch] = v
}

// Tick runs one iteration. It returns false without side effects when
// the proc blocks on an empty input queue.
func (r *ProcRunner) Tick() (bool, error) {
	env := make(map[*Node]Value, len(r.Proc.Nodes))
	for i, s := range r.Proc.State {
		env[s] = r.state[i]
	}

	consumed := make(map[string]int)
	sent := make(map[string][]Value)

	recv := func(ch *Channel) (Value, bool) {
		if ch.Kind == ChannelDirectIn {
			if v, ok := r.Direct[ch.Name]; ok {
				return v, true
			}
			return ZeroValue(ch.Elem), true
		}
		queue := r.In[ch.Name]
		if consumed[ch.Name] >= len(queue) {
			return nil, false
		}
		v := queue[consumed[ch.Name]]
		consumed[ch.Name]++
		return v, true
	}

	for _, n := range r.Proc.Nodes {
		if n.Op == OpParam {
			continue
		}
		var v Value
		var err error
		switch n.Op {
		case OpReceive:
			got, ok := recv(n.Chan)
			if !ok {
				return false, nil
			}
			v = got
		case OpReceiveIf:
			if env[n.Args[0]].(Bits).IsZero() {
				v = ZeroValue(n.Chan.Elem)
			} else {
				got, ok := recv(n.Chan)
				if !ok {
					return false, nil
				}
				v = got
			}
		case OpSend:
			sent[n.Chan.Name] = append(sent[n.Chan.Name], env[n.Args[0]])
			v = Tuple{}
		case OpSendIf:
			if !env[n.Args[0]].(Bits).IsZero() {
				sent[n.Chan.Name] = append(sent[n.Chan.Name], env[n.Args[1]])
			}
			v = Tuple{}
		default:
			v, err = evalNode(n, env)
			if err != nil {
				return false, err
			}
		}
		env[n] = v
	}

	for ch, cnt := range consumed {
		r.In[ch] = r.In[ch][cnt:]
	}
	for ch, vals := range sent {
		r.Out[ch] = append(r.Out[ch], vals...)
	}
	if len(r.Proc.Next) != len(r.state) {
		return false, fmt.Errorf("proc %s has %d next values for %d state elements",
			r.Proc.Name, len(r.Proc.Next), len(r.state))
	}
	for i, nx := range r.Proc.Next {
		r.state[i] = env[nx]
	}
	return true, nil
}

// Run ticks until the proc blocks or maxTicks iterations complete.
func (r *ProcRunner) Run(maxTicks int) error {
	for i := 0; i < maxTicks; i++ {
		ok, err := r.Tick()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	return nil
}
