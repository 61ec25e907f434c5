//go:build !darwin

package keyboard

import (
	"context"
	"sync"

	"github.com/micmonay/keybd_event"
)

type paster struct {
	mu  sync.Mutex
	kb  *keybd_event.KeyBonding
	err error
}

func newPaster() *paster { return &paster{} }

// send presses Ctrl+V. The key bonding is created on first use.
func (p *paster) send(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.kb == nil && p.err == nil {
		kb, err := keybd_event.NewKeyBonding()
		if err != nil {
			p.err = err
		} else {
			p.kb = &kb
		}
	}
	if p.err != nil {
		return p.err
	}

	p.kb.Clear()
	p.kb.HasCTRL(true)
	p.kb.SetKeys(keybd_event.VK_V)
	return p.kb.Launching()
}
