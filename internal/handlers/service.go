package handlers

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	mrand "math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/majeanson/newjo-sub001/internal/events"
	"github.com/majeanson/newjo-sub001/internal/game"
	"github.com/majeanson/newjo-sub001/internal/store"
)

// Kind buckets an action failure for the API layer.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindStorage    Kind = "STORAGE"
)

// Classify maps an action error onto the failure taxonomy. Rules-engine
// rejections are validation; a missing room is not-found; anything else
// bubbled up from the store is a storage fault.
func Classify(err error) Kind {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return KindNotFound
	case errors.Is(err, game.ErrRoomFull),
		errors.Is(err, game.ErrAlreadyJoined),
		errors.Is(err, game.ErrUnknownPlayer),
		errors.Is(err, game.ErrWrongPhase),
		errors.Is(err, game.ErrWrongTurn),
		errors.Is(err, game.ErrInvalidTeam),
		errors.Is(err, game.ErrTeamFull),
		errors.Is(err, game.ErrInvalidSeat),
		errors.Is(err, game.ErrSeatTaken),
		errors.Is(err, game.ErrInvalidBet),
		errors.Is(err, game.ErrNotInHand),
		errors.Is(err, game.ErrMustFollowSuit):
		return KindValidation
	default:
		return KindStorage
	}
}

// Service orchestrates one room action end to end: serialize on the
// room, load the snapshot, run the pure rules op, persist, then
// broadcast. Persist always happens before broadcast so a subscriber
// never sees an event for a state the store cannot return yet.
type Service struct {
	store store.Store
	bus   *events.Bus
	log   *zap.Logger

	// locks serializes mutation per room; the store itself only
	// guarantees whole-snapshot writes, not read-modify-write cycles.
	// One mutex per room code is retained for the life of the process;
	// eviction would race with a concurrent lockRoom on the same key.
	locks sync.Map // roomID -> *sync.Mutex

	now    func() time.Time
	newRng func() *mrand.Rand
}

func NewService(st store.Store, bus *events.Bus, log *zap.Logger) *Service {
	return &Service{
		store: st,
		bus:   bus,
		log:   log,
		now:   time.Now,
		newRng: func() *mrand.Rand {
			return mrand.New(mrand.NewSource(time.Now().UnixNano()))
		},
	}
}

func (s *Service) lockRoom(roomID string) func() {
	mu, _ := s.locks.LoadOrStore(roomID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// generateCode returns a 6-character room code.
func generateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

// CreateRoom allocates an unused room code and persists a fresh state
// under it.
func (s *Service) CreateRoom(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := generateCode()
		if err != nil {
			return "", fmt.Errorf("generate room code: %w", err)
		}
		if _, err := s.store.Get(ctx, code); err == nil {
			s.log.Info("room code collision, regenerating", zap.String("room", code))
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return "", err
		}

		st := game.NewState()
		if err := s.store.Put(ctx, code, &st); err != nil {
			return "", err
		}
		s.log.Info("room created", zap.String("room", code))
		return code, nil
	}
	return "", errors.New("could not allocate a free room code")
}

func (s *Service) GetState(ctx context.Context, roomID string) (*game.State, error) {
	return s.store.Get(ctx, roomID)
}

// mutate runs op under the room lock, persists the result, then emits
// the events built from the before/after pair. The lock is released
// before the broadcast so a subscriber callback may itself issue an
// action against the same room.
func (s *Service) mutate(ctx context.Context, roomID string,
	op func(game.State) (game.State, error),
	evts func(prev, next game.State) []events.Event,
) (*game.State, error) {
	prev, next, err := func() (*game.State, *game.State, error) {
		unlock := s.lockRoom(roomID)
		defer unlock()

		prev, err := s.store.Get(ctx, roomID)
		if err != nil {
			return nil, nil, err
		}
		next, err := op(*prev)
		if err != nil {
			return nil, nil, err
		}
		if err := s.store.Put(ctx, roomID, &next); err != nil {
			return nil, nil, fmt.Errorf("persist room %s: %w", roomID, err)
		}
		return prev, &next, nil
	}()
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, e := range evts(*prev, *next) {
		e.RoomID = roomID
		e.Timestamp = now
		s.bus.Emit(e)
	}
	return next, nil
}
