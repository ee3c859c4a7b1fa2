package bids

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/apperror"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/services/notifications"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/store"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/testkit"
)

type fixture struct {
	db         *gorm.DB
	svc        *Service
	pub        *testkit.Publisher
	client     *models.User
	freelancer *models.User
	project    *models.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb := testkit.OpenDB(t)
	st := store.New(gdb)
	pub := &testkit.Publisher{}
	f := &fixture{
		db:         gdb,
		svc:        NewService(st, notifications.NewDispatcher(st, pub), pub),
		pub:        pub,
		client:     testkit.CreateUser(t, gdb, "Carol Client", models.RoleClient),
		freelancer: testkit.CreateUser(t, gdb, "Fred Freelancer", models.RoleFreelancer),
	}
	f.project = testkit.CreateProject(t, gdb, f.client, "Build API")
	return f
}

func (f *fixture) input() SubmitInput {
	return SubmitInput{
		ProjectID:    f.project.ID,
		FreelancerID: f.freelancer.ID,
		Amount:       1500,
		DeliveryDays: 10,
		Proposal:     "  I have built many of these.  ",
	}
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	bid, err := f.svc.Submit(ctx, f.input())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if bid.Status != models.BidPending {
		t.Fatalf("status = %q, want pending", bid.Status)
	}
	if bid.Proposal != "I have built many of these." {
		t.Fatalf("proposal = %q", bid.Proposal)
	}
	if bid.Freelancer == nil || bid.Freelancer.ID != f.freelancer.ID {
		t.Fatal("expected freelancer profile on the returned bid")
	}

	var project models.Project
	f.db.First(&project, "id = ?", f.project.ID)
	if project.BidCount != 1 {
		t.Fatalf("BidCount = %d, want 1", project.BidCount)
	}

	var inbox []models.Notification
	f.db.Where("user_id = ?", f.client.ID).Find(&inbox)
	if len(inbox) != 1 {
		t.Fatalf("client notifications = %d, want 1", len(inbox))
	}
	n := inbox[0]
	if n.Type != models.NotificationNewBid || n.Title != "New Bid Received" {
		t.Fatalf("notification = %+v", n)
	}
	if want := `Fred Freelancer placed a $1,500 bid on "Build API"`; n.Message != want {
		t.Fatalf("message = %q, want %q", n.Message, want)
	}
	if n.RelatedProjectID == nil || *n.RelatedProjectID != f.project.ID {
		t.Fatalf("related project = %v", n.RelatedProjectID)
	}

	if got := f.pub.On(realtime.UserTopic(f.client.ID), realtime.EventNotification); len(got) != 1 {
		t.Fatalf("client pushes = %d, want 1", len(got))
	}
	events := f.pub.On(realtime.ProjectTopic(f.project.ID), realtime.EventNewBid)
	if len(events) != 1 {
		t.Fatalf("new-bid events = %d, want 1", len(events))
	}
	if ev := events[0].Payload.(NewBidEvent); ev.Bid.ID != bid.ID {
		t.Fatalf("event bid = %v, want %v", ev.Bid.ID, bid.ID)
	}
}

func TestSubmitValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	tests := []struct {
		name  string
		edit  func(*SubmitInput)
		field string
	}{
		{name: "amount below one", edit: func(in *SubmitInput) { in.Amount = 0.5 }, field: "amount"},
		{name: "no delivery days", edit: func(in *SubmitInput) { in.DeliveryDays = 0 }, field: "deliveryDays"},
		{name: "blank proposal", edit: func(in *SubmitInput) { in.Proposal = "   " }, field: "proposal"},
		{name: "long proposal", edit: func(in *SubmitInput) { in.Proposal = strings.Repeat("é", models.MaxProposalLength+1) }, field: "proposal"},
	}
	for _, tt := range tests {
		in := f.input()
		tt.edit(&in)
		_, err := f.svc.Submit(context.Background(), in)
		var appErr *apperror.Error
		if !errors.As(err, &appErr) || appErr.Kind != apperror.KindValidation {
			t.Fatalf("%s: err = %v, want validation", tt.name, err)
		}
		if _, ok := appErr.Fields[tt.field]; !ok {
			t.Fatalf("%s: fields = %v", tt.name, appErr.Fields)
		}
	}

	in := f.input()
	in.Proposal = strings.Repeat("é", models.MaxProposalLength)
	if _, err := f.svc.Submit(context.Background(), in); err != nil {
		t.Fatalf("proposal at the limit: %v", err)
	}
}

func TestSubmitRejections(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	missing := f.input()
	missing.ProjectID = uuid.New()
	if _, err := f.svc.Submit(ctx, missing); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("missing project err = %v, want not found", err)
	}

	own := f.input()
	own.FreelancerID = f.client.ID
	if _, err := f.svc.Submit(ctx, own); !apperror.Is(err, apperror.KindForbidden) {
		t.Fatalf("own project err = %v, want forbidden", err)
	}

	ghost := f.input()
	ghost.FreelancerID = uuid.New()
	if _, err := f.svc.Submit(ctx, ghost); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("unknown freelancer err = %v, want not found", err)
	}

	if _, err := f.svc.Submit(ctx, f.input()); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := f.svc.Submit(ctx, f.input()); !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("second submit err = %v, want conflict", err)
	}

	var project models.Project
	f.db.First(&project, "id = ?", f.project.ID)
	if project.BidCount != 1 {
		t.Fatalf("BidCount after duplicate = %d, want 1", project.BidCount)
	}
}

func TestSubmitClosedProject(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.db.Model(f.project).Update("status", models.ProjectInProgress)

	if _, err := f.svc.Submit(ctx, f.input()); !apperror.Is(err, apperror.KindInvalidState) {
		t.Fatalf("closed project err = %v, want invalid state", err)
	}

	var bids int64
	f.db.Model(&models.Bid{}).Where("project_id = ?", f.project.ID).Count(&bids)
	if bids != 0 {
		t.Fatalf("bids on closed project = %d, want 0", bids)
	}
	var project models.Project
	f.db.First(&project, "id = ?", f.project.ID)
	if project.BidCount != 0 {
		t.Fatalf("BidCount on closed project = %d, want 0", project.BidCount)
	}

	// Self-bids are forbidden whatever the status.
	own := f.input()
	own.FreelancerID = f.client.ID
	if _, err := f.svc.Submit(ctx, own); !apperror.Is(err, apperror.KindForbidden) {
		t.Fatalf("own closed project err = %v, want forbidden", err)
	}
}

type failingNotifier struct{}

func (failingNotifier) Notify(context.Context, notifications.Input) (*models.Notification, error) {
	return nil, apperror.Transient("store notification failed", errors.New("db down"))
}

func TestSubmitSurvivesNotificationFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.svc = NewService(store.New(f.db), failingNotifier{}, f.pub)

	if _, err := f.svc.Submit(context.Background(), f.input()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := f.pub.On(realtime.ProjectTopic(f.project.ID), realtime.EventNewBid); len(got) != 1 {
		t.Fatalf("new-bid events = %d, want 1", len(got))
	}
}

func TestSubmitConcurrentDuplicates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	const attempts = 5

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Submit(context.Background(), f.input())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case apperror.Is(err, apperror.KindConflict):
				conflicts++
			default:
				t.Errorf("submit err = %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 1 || conflicts != attempts-1 {
		t.Fatalf("ok = %d conflicts = %d", ok, conflicts)
	}
	var project models.Project
	f.db.First(&project, "id = ?", f.project.ID)
	if project.BidCount != 1 {
		t.Fatalf("BidCount = %d, want 1", project.BidCount)
	}
}

func TestListing(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Submit(ctx, f.input()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	rows, err := f.svc.ListForProject(ctx, f.project.ID)
	if err != nil || len(rows) != 1 || rows[0].Freelancer == nil {
		t.Fatalf("list for project = %+v, %v", rows, err)
	}
	if _, err := f.svc.ListForProject(ctx, uuid.New()); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("unknown project err = %v", err)
	}

	mine, err := f.svc.ListMine(ctx, f.freelancer.ID)
	if err != nil || len(mine) != 1 {
		t.Fatalf("list mine = %d, %v", len(mine), err)
	}
	if mine[0].Project == nil || mine[0].Project.Client == nil {
		t.Fatal("expected project and client on my bids")
	}
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	tests := map[float64]string{
		1:         "1",
		1500:      "1,500",
		1234567.5: "1,234,567.50",
		99.99:     "99.99",
	}
	for in, want := range tests {
		if got := FormatAmount(in); got != want {
			t.Fatalf("FormatAmount(%v) = %q, want %q", in, got, want)
		}
	}
}
