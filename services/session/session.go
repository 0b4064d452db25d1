// Package sessionsvc keeps short-lived login state: captcha challenges and revoked tokens.
package sessionsvc

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
)

var (
	// errors
	ErrCaptchaRequired  = core.NewValidationError(errors.New("Captcha is required"))
	ErrCaptchaIncorrect = core.NewError(core.ErrForbidden, "Incorrect captcha")

	NowFunc         = time.Now // mockable
	defaultRandIntn = rand.Intn
	randIntn        = defaultRandIntn // mockable
	newIDFunc       = func() string { return uuid.New().String() }
)

type (
	// Store is implemented by MemoryStore and RedisStore.
	Store interface {
		PutCaptcha(ctx context.Context, id, answer string, ttl time.Duration) error
		// TakeCaptcha returns and forgets the answer of a live challenge; ok is false if there is none.
		TakeCaptcha(ctx context.Context, id string) (answer string, ok bool, err error)
		// Revoke marks a token ID as unusable until it expires on its own.
		Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
		IsRevoked(ctx context.Context, tokenID string) (bool, error)
	}

	Challenge struct {
		ID       string `json:"captcha_id"`
		Question string `json:"question"`
	}

	CaptchaService struct {
		store   Store
		ttl     time.Duration
		enabled bool
	}
)

func NewCaptchaService(store Store, ttl time.Duration, enabled bool) *CaptchaService {
	return &CaptchaService{store: store, ttl: ttl, enabled: enabled}
}

func (svc *CaptchaService) Enabled() bool {
	return svc.enabled
}

// New creates a single-use "a + b = ?" challenge with a, b in [1, 9].
func (svc *CaptchaService) New(ctx context.Context) (Challenge, error) {
	a, b := randIntn(9)+1, randIntn(9)+1
	ch := Challenge{
		ID:       newIDFunc(),
		Question: fmt.Sprintf("%d + %d = ?", a, b),
	}
	if err := svc.store.PutCaptcha(ctx, ch.ID, strconv.Itoa(a+b), svc.ttl); err != nil {
		return Challenge{}, errors.Wrap(err, "storing captcha")
	}
	return ch, nil
}

// Verify consumes the challenge id and checks answer against it.
func (svc *CaptchaService) Verify(ctx context.Context, id, answer string) error {
	if !svc.enabled {
		return nil
	}
	id, answer = strings.TrimSpace(id), strings.TrimSpace(answer)
	if id == "" || answer == "" {
		return ErrCaptchaRequired
	}
	want, ok, err := svc.store.TakeCaptcha(ctx, id)
	if err != nil {
		return errors.Wrap(err, "taking captcha")
	}
	if !ok || want != answer {
		return ErrCaptchaIncorrect
	}
	return nil
}
