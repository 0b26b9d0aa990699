package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"nightapp-server/internal/domain/model"
	"nightapp-server/internal/domain/ports/repository"
	"nightapp-server/internal/infra/logging"
)

// Compile-time check
var _ FeedbackUseCase = (*feedbackUC)(nil)

// Encryptor protects feedback comments at rest. The AES-GCM service in
// infra/security satisfies this interface.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type FeedbackUseCase interface {
	// Submit stores a mood rating with an optional comment. The comment is
	// encrypted before it leaves this method.
	Submit(ctx context.Context, userID string, mood int, comment string) (*model.Feedback, error)
	// Recent returns the latest feedback with comments decrypted for
	// admin review.
	Recent(ctx context.Context, limit int) ([]*model.Feedback, error)
	MoodBreakdown(ctx context.Context, since time.Time) (map[int]int, error)
}

type feedbackUC struct {
	feedback repository.FeedbackRepository
	enc      Encryptor
	log      *zerolog.Logger
}

func NewFeedbackUseCase(feedback repository.FeedbackRepository, enc Encryptor, logger *zerolog.Logger) *feedbackUC {
	return &feedbackUC{feedback: feedback, enc: enc, log: logger}
}

func (u *feedbackUC) Submit(ctx context.Context, userID string, mood int, comment string) (*model.Feedback, error) {
	defer logging.TraceDuration(u.log, "FeedbackUC.Submit")()

	fb, err := model.NewFeedback(userID, mood, comment)
	if err != nil {
		return nil, err
	}
	if fb.Comment != "" {
		ct, err := u.enc.Encrypt(fb.Comment)
		if err != nil {
			u.log.Error().Err(err).Msg("feedback comment encryption failed")
			return nil, err
		}
		fb.Comment = ct
	}
	if err := u.feedback.Save(ctx, repository.NoTX, fb); err != nil {
		return nil, err
	}
	u.log.Info().Str("user_id", userID).Int("mood", mood).Msg("feedback submitted")
	return fb, nil
}

func (u *feedbackUC) Recent(ctx context.Context, limit int) ([]*model.Feedback, error) {
	defer logging.TraceDuration(u.log, "FeedbackUC.Recent")()

	list, err := u.feedback.ListRecent(ctx, repository.NoTX, limit)
	if err != nil {
		return nil, err
	}
	for _, fb := range list {
		if fb.Comment == "" {
			continue
		}
		pt, err := u.enc.Decrypt(fb.Comment)
		if err != nil {
			// A row that fails to decrypt is shown without its comment
			// rather than sinking the whole listing.
			u.log.Warn().Err(err).Str("feedback_id", fb.ID).Msg("feedback comment decryption failed")
			fb.Comment = ""
			continue
		}
		fb.Comment = pt
	}
	return list, nil
}

func (u *feedbackUC) MoodBreakdown(ctx context.Context, since time.Time) (map[int]int, error) {
	defer logging.TraceDuration(u.log, "FeedbackUC.MoodBreakdown")()
	return u.feedback.MoodCounts(ctx, repository.NoTX, since)
}
