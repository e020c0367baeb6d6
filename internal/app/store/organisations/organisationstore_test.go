package organisationstore_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	organisationstore "github.com/dalemusser/orgdesk/internal/app/store/organisations"
	"github.com/dalemusser/orgdesk/internal/app/system/paging"
	"github.com/dalemusser/orgdesk/internal/domain/models"
	"github.com/dalemusser/orgdesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func newOrg(name, email string) models.Organisation {
	return models.Organisation{
		Name:         name,
		Type:         "charity",
		Contact:      models.Contact{Email: email},
		Location:     models.Location{Long: 1, Lat: 1},
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
	}
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organisationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org, err := store.Create(ctx, newOrg("Acme Relief", "  Ops@Acme.org "))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if org.ID.IsZero() {
		t.Error("expected ID to be assigned")
	}
	if org.Contact.Email != "ops@acme.org" {
		t.Errorf("Contact.Email: got %q, want %q", org.Contact.Email, "ops@acme.org")
	}
	if org.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
	if org.Notifications == nil || org.Requests == nil {
		t.Error("expected empty notifications and requests slices")
	}

	got, err := store.GetByID(ctx, org.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Acme Relief" {
		t.Errorf("Name: got %q, want %q", got.Name, "Acme Relief")
	}
	if got.PasswordHash == "" {
		t.Error("expected password hash to be stored")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organisationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, newOrg("First", "dup@example.com")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err := store.Create(ctx, newOrg("Second", "DUP@example.com"))
	if !errors.Is(err, organisationstore.ErrDuplicateOrganisation) {
		t.Fatalf("got %v, want ErrDuplicateOrganisation", err)
	}
}

func TestStore_ExistsByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organisationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, newOrg("Acme", "hello@acme.org")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tests := []struct {
		email string
		want  bool
	}{
		{"hello@acme.org", true},
		{"HELLO@ACME.ORG", true},
		{"other@acme.org", false},
	}
	for _, tt := range tests {
		got, err := store.ExistsByEmail(ctx, tt.email)
		if err != nil {
			t.Fatalf("ExistsByEmail(%q) failed: %v", tt.email, err)
		}
		if got != tt.want {
			t.Errorf("ExistsByEmail(%q): got %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organisationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org, err := store.Create(ctx, newOrg("Old Name", "u@example.com"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	name := "New Name"
	employees := int64(42)
	got, err := store.Update(ctx, org.ID, organisationstore.Patch{Name: &name, Employees: &employees})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Name != name {
		t.Errorf("Name: got %q, want %q", got.Name, name)
	}
	if got.Employees != employees {
		t.Errorf("Employees: got %d, want %d", got.Employees, employees)
	}
	if got.PasswordHash != org.PasswordHash {
		t.Error("expected password hash to be unchanged")
	}
	if got.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set")
	}
}

func TestStore_Update_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organisationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	name := "x"
	_, err := store.Update(ctx, primitive.NewObjectID(), organisationstore.Patch{Name: &name})
	if err != mongo.ErrNoDocuments {
		t.Fatalf("got %v, want mongo.ErrNoDocuments", err)
	}
}

func TestStore_Update_RejectsNegativeEmployees(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organisationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org, err := store.Create(ctx, newOrg("Acme", "neg@example.com"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	neg := int64(-1)
	_, err = store.Update(ctx, org.ID, organisationstore.Patch{Employees: &neg})
	if !errors.Is(err, organisationstore.ErrInvalidOrganisation) {
		t.Fatalf("got %v, want ErrInvalidOrganisation", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organisationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org, err := store.Create(ctx, newOrg("Gone", "gone@example.com"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	n, err := store.Delete(ctx, org.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete: got (%d, %v), want (1, nil)", n, err)
	}
	n, err = store.Delete(ctx, org.ID)
	if err != nil || n != 0 {
		t.Fatalf("second Delete: got (%d, %v), want (0, nil)", n, err)
	}
	if _, err := store.GetByID(ctx, org.ID); err != mongo.ErrNoDocuments {
		t.Errorf("GetByID after delete: got %v, want mongo.ErrNoDocuments", err)
	}
}

func TestStore_NearestOfType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := organisationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ref := fx.CreateOrganisation(ctx, "Ref", "hospital", 0, 0)
	far := fx.CreateOrganisation(ctx, "Far", "hospital", 3, 4)
	near := fx.CreateOrganisation(ctx, "Near", "hospital", 1, 0)
	fx.CreateOrganisation(ctx, "Other Type", "school", 0.5, 0)

	got, err := store.NearestOfType(ctx, ref.Location, "hospital")
	if err != nil {
		t.Fatalf("NearestOfType failed: %v", err)
	}

	want := []struct {
		id   primitive.ObjectID
		dist float64
	}{
		{ref.ID, 0},
		{near.ID, 1},
		{far.ID, 5},
	}
	if len(got) != len(want) {
		t.Fatalf("len: got %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].ID != w.id {
			t.Errorf("[%d] ID: got %v, want %v", i, got[i].ID, w.id)
		}
		if got[i].Distance != w.dist {
			t.Errorf("[%d] Distance: got %v, want %v", i, got[i].Distance, w.dist)
		}
		if got[i].Type != "hospital" {
			t.Errorf("[%d] Type: got %q, want %q", i, got[i].Type, "hospital")
		}
	}
}

func TestStore_Requests(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := organisationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganisation(ctx, "Busy", "charity", 0, 0)
	first := fx.CreateRequest(ctx, org.ID, "Officer A", "first")
	second := fx.CreateRequest(ctx, org.ID, "Officer B", "second")

	got, err := store.Requests(ctx, org.ID)
	if err != nil {
		t.Fatalf("Requests failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len: got %d, want 2", len(got))
	}
	if got[0].ID != first.ID || got[1].ID != second.ID {
		t.Errorf("order: got [%v %v], want [%v %v]", got[0].ID, got[1].ID, first.ID, second.ID)
	}

	if _, err := store.Requests(ctx, primitive.NewObjectID()); err != mongo.ErrNoDocuments {
		t.Errorf("missing org: got %v, want mongo.ErrNoDocuments", err)
	}
}

func TestStore_AcceptNotification(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := organisationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganisation(ctx, "Target", "charity", 0, 0)
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	fx.AddNotification(ctx, org.ID, at, "Officer")

	n, err := store.AcceptNotification(ctx, org.ID, at)
	if err != nil {
		t.Fatalf("AcceptNotification failed: %v", err)
	}
	if !n.Status || !n.At.Equal(at) {
		t.Errorf("notification: got {at:%v status:%v}, want {at:%v status:true}", n.At, n.Status, at)
	}

	got, err := store.GetByID(ctx, org.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Notifications) != 1 || !got.Notifications[0].Status {
		t.Errorf("stored notifications: got %+v, want one accepted", got.Notifications)
	}

	if _, err := store.AcceptNotification(ctx, org.ID, at); !errors.Is(err, organisationstore.ErrAlreadyAccepted) {
		t.Errorf("second accept: got %v, want ErrAlreadyAccepted", err)
	}
	if _, err := store.AcceptNotification(ctx, org.ID, at.Add(time.Hour)); !errors.Is(err, organisationstore.ErrNotificationNotFound) {
		t.Errorf("unknown timestamp: got %v, want ErrNotificationNotFound", err)
	}
	if _, err := store.AcceptNotification(ctx, primitive.NewObjectID(), at); err != mongo.ErrNoDocuments {
		t.Errorf("missing org: got %v, want mongo.ErrNoDocuments", err)
	}
}

func TestStore_AcceptNotification_SameTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := organisationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganisation(ctx, "Target", "charity", 0, 0)
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	fx.AddNotification(ctx, org.ID, at, "First")
	fx.AddNotification(ctx, org.ID, at, "Second")

	for _, want := range []string{"First", "Second"} {
		n, err := store.AcceptNotification(ctx, org.ID, at)
		if err != nil {
			t.Fatalf("accept %s: %v", want, err)
		}
		if n.From != want || !n.Status {
			t.Errorf("accepted: got {from:%q status:%v}, want {from:%q status:true}", n.From, n.Status, want)
		}
	}

	if _, err := store.AcceptNotification(ctx, org.ID, at); !errors.Is(err, organisationstore.ErrAlreadyAccepted) {
		t.Errorf("third accept: got %v, want ErrAlreadyAccepted", err)
	}
}

func TestStore_GetByIDs_PreservesOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := organisationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateOrganisation(ctx, "A", "charity", 0, 0)
	b := fx.CreateOrganisation(ctx, "B", "charity", 0, 0)

	got, err := store.GetByIDs(ctx, []primitive.ObjectID{b.ID, primitive.NewObjectID(), a.ID})
	if err != nil {
		t.Fatalf("GetByIDs failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != b.ID || got[1].ID != a.ID {
		t.Errorf("got %d orgs, want [B A]", len(got))
	}
}

func TestStore_List_Keyset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organisationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n := paging.PageSize + 5
	for i := n - 1; i >= 0; i-- {
		if _, err := store.Create(ctx, newOrg(fmt.Sprintf("Org %02d", i), fmt.Sprintf("org%02d@example.com", i))); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	first, page, err := store.List(ctx, organisationstore.ListFilter{}, paging.Params{Start: 1})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(first) != paging.PageSize || page.Total != int64(n) || page.HasPrev || !page.HasNext {
		t.Fatalf("first page: got %d rows, %+v", len(first), page)
	}
	if first[0].Name != "Org 00" {
		t.Errorf("first row: got %q, want %q", first[0].Name, "Org 00")
	}
	if first[0].PasswordHash != "" {
		t.Error("List must not load password hashes")
	}

	second, page2, err := store.List(ctx, organisationstore.ListFilter{}, paging.Params{After: page.NextCursor, Start: page.Range.NextStart})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(second) != 5 || !page2.HasPrev || page2.HasNext {
		t.Fatalf("second page: got %d rows, %+v", len(second), page2)
	}
	if second[0].Name != fmt.Sprintf("Org %02d", paging.PageSize) {
		t.Errorf("second page first row: got %q", second[0].Name)
	}
	if page2.Range.Start != paging.PageSize+1 || page2.Range.End != n {
		t.Errorf("second page range: got %+v", page2.Range)
	}

	back, page3, err := store.List(ctx, organisationstore.ListFilter{}, paging.Params{Before: page2.PrevCursor, Start: 1})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(back) != paging.PageSize || page3.HasPrev || !page3.HasNext {
		t.Fatalf("back page: got %d rows, %+v", len(back), page3)
	}
	if back[0].Name != "Org 00" || back[len(back)-1].Name != fmt.Sprintf("Org %02d", paging.PageSize-1) {
		t.Errorf("back page order: first %q, last %q", back[0].Name, back[len(back)-1].Name)
	}
}

func TestStore_List_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organisationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seed := []struct{ name, typ string }{
		{"Harbour Trust", "charity"},
		{"harbour Foods", "business"},
		{"Hillside Care", "charity"},
	}
	for i, o := range seed {
		org := newOrg(o.name, fmt.Sprintf("f%d@example.com", i))
		org.Type = o.typ
		if _, err := store.Create(ctx, org); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter organisationstore.ListFilter
		want   []string
	}{
		{"all", organisationstore.ListFilter{}, []string{"harbour Foods", "Harbour Trust", "Hillside Care"}},
		{"prefix any case", organisationstore.ListFilter{Query: "HARB"}, []string{"harbour Foods", "Harbour Trust"}},
		{"type", organisationstore.ListFilter{Type: "charity"}, []string{"Harbour Trust", "Hillside Care"}},
		{"prefix and type", organisationstore.ListFilter{Query: "har", Type: "charity"}, []string{"Harbour Trust"}},
		{"no match", organisationstore.ListFilter{Query: "zz"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orgs, page, err := store.List(ctx, tt.filter, paging.Params{Start: 1})
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if page.Total != int64(len(tt.want)) {
				t.Errorf("Total: got %d, want %d", page.Total, len(tt.want))
			}
			if len(orgs) != len(tt.want) {
				t.Fatalf("got %d rows, want %d", len(orgs), len(tt.want))
			}
			for i, o := range orgs {
				if o.Name != tt.want[i] {
					t.Errorf("row %d: got %q, want %q", i, o.Name, tt.want[i])
				}
			}
		})
	}
}
