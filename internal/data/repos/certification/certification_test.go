package certification

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/certchain-backend/internal/data/repos/testutil"
	types "github.com/yungbote/certchain-backend/internal/domain"
)

func TestCertificationRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := testutil.Ctx(tx)

	repo := NewCertificationRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "Ana", nil)
	tp := testutil.SeedTopic(t, ctx, tx, "Go")

	created, err := repo.Create(dbc, &types.Certification{UserID: u.ID, TopicID: tp.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != types.CertStatusPending {
		t.Fatalf("Create: expected pending default, got %q", created.Status)
	}

	got, err := repo.GetByUserTopic(dbc, u.ID, tp.ID)
	if err != nil || got == nil || got.ID != created.ID {
		t.Fatalf("GetByUserTopic: got=%+v err=%v", got, err)
	}

	if err := repo.UpdateProgress(dbc, created.ID, types.CertStatusInProgress, 40); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	got, err = repo.GetByID(dbc, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ProgressPercentage != 40 || got.Status != types.CertStatusInProgress {
		t.Fatalf("UpdateProgress: unexpected row %+v", got)
	}

	byUser, err := repo.ListByUser(dbc, u.ID)
	if err != nil || len(byUser) != 1 {
		t.Fatalf("ListByUser: len=%d err=%v", len(byUser), err)
	}
	byTopic, err := repo.ListByTopic(dbc, tp.ID)
	if err != nil || len(byTopic) != 1 {
		t.Fatalf("ListByTopic: len=%d err=%v", len(byTopic), err)
	}

	missing, err := repo.GetByID(dbc, u.ID)
	if err != nil || missing != nil {
		t.Fatalf("GetByID(missing): got=%+v err=%v", missing, err)
	}
}

func TestCertificationRepo_DuplicatePair(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := testutil.Ctx(db.WithContext(ctx))

	repo := NewCertificationRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, db, "Ana", nil)
	tp := testutil.SeedTopic(t, ctx, db, "Go")

	if _, err := repo.Create(dbc, &types.Certification{UserID: u.ID, TopicID: tp.ID}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := repo.Create(dbc, &types.Certification{UserID: u.ID, TopicID: tp.ID})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected ErrDuplicatedKey, got %v", err)
	}
}

func TestCertificationRepo_CompleteIssuanceOnce(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := testutil.Ctx(tx)

	repo := NewCertificationRepo(db, testutil.Logger(t))
	c := testutil.SeedCertification(t, ctx, tx,
		testutil.SeedUser(t, ctx, tx, "Ana", nil),
		testutil.SeedTopic(t, ctx, tx, "Go"), 50)

	iss := types.Issuance{
		URLImage:        "ipfs://QmImg",
		TokenURI:        "ipfs://QmMeta",
		TokenID:         "16",
		TxHash:          "0xabc",
		ContractAddress: "0x0000000000000000000000000000000000000001",
		Metadata:        datatypes.JSON(`{"name":"Certificado - Ana"}`),
		IssuedAt:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}
	ok, err := repo.CompleteIssuance(dbc, c.ID, types.CertStatusCompleted, 100, iss)
	if err != nil || !ok {
		t.Fatalf("CompleteIssuance: ok=%v err=%v", ok, err)
	}

	iss.URLImage = "ipfs://QmOther"
	ok, err = repo.CompleteIssuance(dbc, c.ID, types.CertStatusCompleted, 100, iss)
	if err != nil {
		t.Fatalf("CompleteIssuance(second): %v", err)
	}
	if ok {
		t.Fatalf("CompleteIssuance(second): expected no rows affected")
	}

	ok, err = repo.SetImage(dbc, c.ID, types.CertStatusCompleted, 100, "ipfs://QmThird")
	if err != nil || ok {
		t.Fatalf("SetImage on issued row: ok=%v err=%v", ok, err)
	}

	got, err := repo.GetByID(dbc, c.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.URLImage == nil || *got.URLImage != "ipfs://QmImg" {
		t.Fatalf("expected first image to stick, got %v", got.URLImage)
	}
	if got.TokenID == nil || *got.TokenID != "16" {
		t.Fatalf("expected token id 16, got %v", got.TokenID)
	}
}

func TestCertificationRepo_Delete(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := testutil.Ctx(tx)

	repo := NewCertificationRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "Ana", nil)
	tp := testutil.SeedTopic(t, ctx, tx, "Go")
	c := testutil.SeedCertification(t, ctx, tx, u, tp, 0)

	ok, err := repo.Delete(dbc, c.ID)
	if err != nil || !ok {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}
	ok, err = repo.Delete(dbc, c.ID)
	if err != nil || ok {
		t.Fatalf("Delete(again): ok=%v err=%v", ok, err)
	}

	// The row is gone, so the pair can be certified again.
	var remaining int64
	if err := tx.Table("certifications").Where("id = ?", c.ID).Count(&remaining).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected row to be removed, %d left", remaining)
	}
	again, err := repo.Create(dbc, &types.Certification{UserID: u.ID, TopicID: tp.ID})
	if err != nil {
		t.Fatalf("Create after Delete: %v", err)
	}
	if again.ID == c.ID {
		t.Fatalf("expected a new certification id")
	}
}
