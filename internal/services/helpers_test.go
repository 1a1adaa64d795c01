package services

import (
	"context"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/smartassist-backend/internal/data/repos"
	"github.com/yungbote/smartassist-backend/internal/data/repos/testutil"
	"github.com/yungbote/smartassist-backend/internal/realtime"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.ChangeEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev realtime.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) count(table realtime.Table) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, ev := range p.events {
		if ev.Table == table {
			n++
		}
	}
	return n
}

type fixture struct {
	db        *gorm.DB
	repos     repos.Set
	pub       *recordingPublisher
	notify    ChangeNotifier
	tutorials TutorialService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	pub := &recordingPublisher{}
	return &fixture{
		db:        db,
		repos:     set,
		pub:       pub,
		notify:    NewChangeNotifier(pub, nil),
		tutorials: NewTutorialService(db, log, set.Tutorials),
	}
}
