package projects

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/apperror"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/store"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/testkit"
)

func validInput() Input {
	return Input{
		Title:       "  Marketing site  ",
		Description: "Five pages and a blog",
		Category:    "Web Development",
		Skills:      []string{"react", " ", "css"},
		Budget:      models.Budget{Min: 200, Max: 800},
		Deadline:    time.Now().Add(14 * 24 * time.Hour),
	}
}

func TestCreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gdb := testkit.OpenDB(t)
	svc := NewService(store.New(gdb))
	client := testkit.CreateUser(t, gdb, "Carol Client", models.RoleClient)

	p, err := svc.Create(ctx, client.ID, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Title != "Marketing site" || p.Status != models.ProjectOpen || p.BidCount != 0 {
		t.Fatalf("project = %+v", p)
	}
	if len(p.Skills) != 2 {
		t.Fatalf("skills = %v, want blanks dropped", p.Skills)
	}
	if p.Client == nil || p.Client.ID != client.ID {
		t.Fatal("expected client to be joined")
	}

	freelancer := testkit.CreateUser(t, gdb, "Fred Freelancer", models.RoleFreelancer)
	testkit.CreateBid(t, gdb, p, freelancer, 300)

	detail, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(detail.Bids) != 1 || detail.Bids[0].Freelancer == nil {
		t.Fatalf("bids = %+v", detail.Bids)
	}
	if _, err := svc.Get(ctx, uuid.New()); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("get unknown err = %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	svc := NewService(store.New(testkit.OpenDB(t)))
	tests := []struct {
		name  string
		edit  func(*Input)
		field string
	}{
		{name: "blank title", edit: func(in *Input) { in.Title = " " }, field: "title"},
		{name: "long title", edit: func(in *Input) { in.Title = strings.Repeat("a", 101) }, field: "title"},
		{name: "long description", edit: func(in *Input) { in.Description = strings.Repeat("a", 5001) }, field: "description"},
		{name: "unknown category", edit: func(in *Input) { in.Category = "Gardening" }, field: "category"},
		{name: "min below one", edit: func(in *Input) { in.Budget.Min = 0 }, field: "budget.min"},
		{name: "max below min", edit: func(in *Input) { in.Budget.Max = 100 }, field: "budget.max"},
		{name: "no deadline", edit: func(in *Input) { in.Deadline = time.Time{} }, field: "deadline"},
	}
	for _, tt := range tests {
		in := validInput()
		tt.edit(&in)
		_, err := svc.Create(context.Background(), uuid.New(), in)
		if !apperror.Is(err, apperror.KindValidation) {
			t.Fatalf("%s: err = %v, want validation", tt.name, err)
		}
		if fields := err.(*apperror.Error).Fields; len(fields[tt.field]) == 0 {
			t.Fatalf("%s: fields = %v", tt.name, fields)
		}
	}
}

func TestListPaging(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gdb := testkit.OpenDB(t)
	svc := NewService(store.New(gdb))
	client := testkit.CreateUser(t, gdb, "Carol Client", models.RoleClient)
	for i := 0; i < 15; i++ {
		testkit.CreateProject(t, gdb, client, fmt.Sprintf("Project %02d", i))
	}

	page, err := svc.List(ctx, Filter{}, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Page != 1 || page.Limit != DefaultPageSize || len(page.Projects) != DefaultPageSize {
		t.Fatalf("page = %d limit = %d rows = %d", page.Page, page.Limit, len(page.Projects))
	}
	if page.Total != 15 || page.Pages != 2 {
		t.Fatalf("total = %d pages = %d", page.Total, page.Pages)
	}
	if page.Projects[0].Title != "Project 14" {
		t.Fatalf("first = %q, want newest first", page.Projects[0].Title)
	}

	second, err := svc.List(ctx, Filter{}, 2, 12)
	if err != nil || len(second.Projects) != 3 {
		t.Fatalf("second page = %v, %v", second, err)
	}

	far, err := svc.List(ctx, Filter{}, math.MaxInt, 12)
	if err != nil {
		t.Fatalf("far page: %v", err)
	}
	if far.Page != MaxPage || len(far.Projects) != 0 {
		t.Fatalf("far page = %d rows = %d, want page %d and no rows", far.Page, len(far.Projects), MaxPage)
	}

	capped, err := svc.List(ctx, Filter{}, 1, 1000)
	if err != nil || capped.Limit != MaxPageSize {
		t.Fatalf("capped limit = %d, %v", capped.Limit, err)
	}

	if _, err := svc.List(ctx, Filter{Status: "archived"}, 1, 10); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("bad status err = %v", err)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gdb := testkit.OpenDB(t)
	svc := NewService(store.New(gdb))
	client := testkit.CreateUser(t, gdb, "Carol Client", models.RoleClient)
	stranger := testkit.CreateUser(t, gdb, "Sam Stranger", models.RoleClient)
	p := testkit.CreateProject(t, gdb, client, "Original")

	in := validInput()
	in.Title = "Renamed"
	if _, err := svc.Update(ctx, p.ID, stranger.ID, in); !apperror.Is(err, apperror.KindForbidden) {
		t.Fatalf("stranger update err = %v", err)
	}
	got, err := svc.Update(ctx, p.ID, client.ID, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != "Renamed" || got.Budget.Max != 800 || len(got.Skills) != 2 {
		t.Fatalf("updated = %+v", got)
	}

	gdb.Model(p).Update("status", models.ProjectInProgress)
	if _, err := svc.Update(ctx, p.ID, client.ID, in); !apperror.Is(err, apperror.KindInvalidState) {
		t.Fatalf("closed update err = %v", err)
	}

	if err := svc.Delete(ctx, p.ID, stranger.ID); !apperror.Is(err, apperror.KindForbidden) {
		t.Fatalf("stranger delete err = %v", err)
	}
	if err := svc.Delete(ctx, p.ID, client.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, p.ID, client.ID); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("second delete err = %v", err)
	}

	mine, err := svc.ListMine(ctx, client.ID)
	if err != nil || len(mine) != 0 {
		t.Fatalf("my projects = %d, %v", len(mine), err)
	}
	if cats := svc.Categories(); len(cats) != len(models.Categories) {
		t.Fatalf("categories = %d", len(cats))
	}
}
