package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/touchbasehq/touchbase-backend/internal/domain"
)

func SeedContact(tb testing.TB, ctx context.Context, tx *gorm.DB, displayName string, emails, phones []string) *types.Contact {
	tb.Helper()
	c := &types.Contact{
		ID:          uuid.New(),
		DisplayName: displayName,
		Emails:      types.StringList(emails),
		Phones:      types.StringList(phones),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed contact: %v", err)
	}
	return c
}

// SeedContactAt pins created_at so cursor-order assertions stay stable.
func SeedContactAt(tb testing.TB, ctx context.Context, tx *gorm.DB, displayName string, createdAt time.Time) *types.Contact {
	tb.Helper()
	c := &types.Contact{
		ID:          uuid.New(),
		DisplayName: displayName,
		CreatedAt:   createdAt,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed contact: %v", err)
	}
	return c
}

func SeedGroup(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, parentID *uuid.UUID) *types.Group {
	tb.Helper()
	g := &types.Group{
		ID:       uuid.New(),
		Name:     name,
		ParentID: parentID,
	}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed group: %v", err)
	}
	return g
}

func SeedTag(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Tag {
	tb.Helper()
	tg := &types.Tag{
		ID:   uuid.New(),
		Name: name,
	}
	if err := tx.WithContext(ctx).Create(tg).Error; err != nil {
		tb.Fatalf("seed tag: %v", err)
	}
	return tg
}

func SeedSmartList(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, rules []byte) *types.SmartList {
	tb.Helper()
	sl := &types.SmartList{
		ID:    uuid.New(),
		Name:  name,
		Rules: rules,
	}
	if err := tx.WithContext(ctx).Create(sl).Error; err != nil {
		tb.Fatalf("seed smart list: %v", err)
	}
	return sl
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrInt(v int) *int { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
