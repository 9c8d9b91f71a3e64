package testutil

import (
	"context"
	"testing"

	types "github.com/yungbote/certchain-backend/internal/domain"
	"gorm.io/gorm"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, wallet *string) *types.User {
	tb.Helper()
	u := &types.User{Name: name, WalletAddress: wallet}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedTopic(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Topic {
	tb.Helper()
	t := &types.Topic{Name: name}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed topic: %v", err)
	}
	return t
}

func SeedCertification(tb testing.TB, ctx context.Context, tx *gorm.DB, u *types.User, t *types.Topic, pct int) *types.Certification {
	tb.Helper()
	c := &types.Certification{
		UserID:             u.ID,
		TopicID:            t.ID,
		Status:             types.CertStatusPending,
		ProgressPercentage: pct,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed certification: %v", err)
	}
	return c
}
