package db_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/inkwell/inkwell/internal/db"
	"github.com/inkwell/inkwell/internal/db/dbtest"
	"github.com/inkwell/inkwell/internal/models"
	"github.com/inkwell/inkwell/pkg/config"
)

func seedUser(t *testing.T, repo *db.Repository, name string) *models.User {
	t.Helper()
	user := &models.User{Username: name, PasswordHash: "x", CreatedAt: time.Now().UTC()}
	if err := db.NewUserRepository(repo).Create(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return user
}

func seedPost(t *testing.T, repo *db.Repository, authorID int64, title, tags string) *models.Post {
	t.Helper()
	post := &models.Post{Title: title, Content: "body", Tags: tags, AuthorID: authorID, CreatedAt: time.Now().UTC()}
	if err := db.NewPostRepository(repo).Create(context.Background(), post); err != nil {
		t.Fatalf("create post %s: %v", title, err)
	}
	return post
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	repo := db.NewRepository(dbtest.New(t).DB)
	users := db.NewUserRepository(repo)
	seedUser(t, repo, "alice")

	err := users.Create(context.Background(), &models.User{Username: "alice", PasswordHash: "y", CreatedAt: time.Now()})
	if !errors.Is(err, db.ErrDuplicate) {
		t.Fatalf("Create() error = %v, want ErrDuplicate", err)
	}

	all, err := users.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("got %d users, want 1", len(all))
	}
}

func TestUserRepository_UpdateProfileDuplicateLeavesRow(t *testing.T) {
	ctx := context.Background()
	repo := db.NewRepository(dbtest.New(t).DB)
	users := db.NewUserRepository(repo)
	seedUser(t, repo, "alice")
	bob := seedUser(t, repo, "bob")

	taken := "alice"
	hash := "changed"
	err := users.UpdateProfile(ctx, bob.ID, db.ProfileChanges{Username: &taken, PasswordHash: &hash})
	if !errors.Is(err, db.ErrDuplicate) {
		t.Fatalf("UpdateProfile() error = %v, want ErrDuplicate", err)
	}

	got, err := users.GetByID(ctx, bob.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Username != "bob" || got.PasswordHash != "x" {
		t.Errorf("row changed after failed update: %+v", got)
	}
}

func TestLikeRepository_AddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := db.NewRepository(dbtest.New(t).DB)
	alice := seedUser(t, repo, "alice")
	post := seedPost(t, repo, alice.ID, "Hello", "music")
	likes := db.NewLikeRepository(repo)

	created, err := likes.Add(ctx, alice.ID, post.ID, time.Now())
	if err != nil || !created {
		t.Fatalf("first Add() = %v, %v; want true, nil", created, err)
	}
	created, err = likes.Add(ctx, alice.ID, post.ID, time.Now())
	if err != nil || created {
		t.Fatalf("second Add() = %v, %v; want false, nil", created, err)
	}

	count, err := likes.CountByPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("CountByPost() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountByPost() = %d, want 1", count)
	}

	removed, err := likes.Remove(ctx, alice.ID, post.ID)
	if err != nil || !removed {
		t.Fatalf("Remove() = %v, %v; want true, nil", removed, err)
	}
	removed, err = likes.Remove(ctx, alice.ID, post.ID)
	if err != nil || removed {
		t.Fatalf("second Remove() = %v, %v; want false, nil", removed, err)
	}
}

func TestPostRepository_ListPagination(t *testing.T) {
	ctx := context.Background()
	repo := db.NewRepository(dbtest.New(t).DB)
	alice := seedUser(t, repo, "alice")
	for i := 1; i <= 25; i++ {
		seedPost(t, repo, alice.ID, fmt.Sprintf("post %d", i), "")
	}
	posts := db.NewPostRepository(repo)

	page2, err := posts.List(ctx, db.ListQuery{Limit: 10, Offset: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page2) != 10 {
		t.Fatalf("got %d posts, want 10", len(page2))
	}
	// 25 posts: ids 25..16 on page 1, 15..6 on page 2
	if page2[0].ID != 15 || page2[9].ID != 6 {
		t.Errorf("page 2 spans ids %d..%d, want 15..6", page2[0].ID, page2[9].ID)
	}
	if page2[0].Author == nil || page2[0].Author.Username != "alice" {
		t.Errorf("author not preloaded: %+v", page2[0].Author)
	}
}

func TestPostRepository_ListByCategory(t *testing.T) {
	ctx := context.Background()
	repo := db.NewRepository(dbtest.New(t).DB)
	alice := seedUser(t, repo, "alice")
	seedPost(t, repo, alice.ID, "a", "Music")
	seedPost(t, repo, alice.ID, "b", "travel,music-videos")
	seedPost(t, repo, alice.ID, "c", "cooking")
	seedPost(t, repo, alice.ID, "d", "100% pure")
	seedPost(t, repo, alice.ID, "e", "1000 pure")
	posts := db.NewPostRepository(repo)

	tests := []struct {
		name     string
		category string
		want     []string
	}{
		{"case insensitive", "music", []string{"b", "a"}},
		{"upper query", "MUSIC", []string{"b", "a"}},
		{"no match", "sports", nil},
		{"percent is literal", "100%", []string{"d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := posts.List(ctx, db.ListQuery{
				Category: tt.category,
				Matcher:  db.SubstringMatcher{},
				Limit:    10,
			})
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			var titles []string
			for _, p := range got {
				titles = append(titles, p.Title)
			}
			if fmt.Sprint(titles) != fmt.Sprint(tt.want) {
				t.Errorf("List(%q) = %v, want %v", tt.category, titles, tt.want)
			}
		})
	}
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	repo := db.NewRepository(dbtest.New(t).DB)
	alice := seedUser(t, repo, "alice")
	post := seedPost(t, repo, alice.ID, "Hello", "")
	other := seedPost(t, repo, alice.ID, "Other", "")

	comments := db.NewCommentRepository(repo)
	likes := db.NewLikeRepository(repo)
	for _, p := range []*models.Post{post, other} {
		if err := comments.Create(ctx, &models.Comment{Content: "hi", AuthorID: alice.ID, PostID: p.ID, CreatedAt: time.Now()}); err != nil {
			t.Fatalf("create comment: %v", err)
		}
		if _, err := likes.Add(ctx, alice.ID, p.ID, time.Now()); err != nil {
			t.Fatalf("add like: %v", err)
		}
	}

	deleted, err := db.NewPostRepository(repo).Delete(ctx, post.ID)
	if err != nil || !deleted {
		t.Fatalf("Delete() = %v, %v; want true, nil", deleted, err)
	}

	remaining, err := comments.ListByPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("ListByPost() error = %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("%d comments survived post deletion", len(remaining))
	}
	counts, err := likes.CountByPosts(ctx, []int64{post.ID, other.ID})
	if err != nil {
		t.Fatalf("CountByPosts() error = %v", err)
	}
	if counts[post.ID] != 0 || counts[other.ID] != 1 {
		t.Errorf("like counts after delete = %v, want only other post liked", counts)
	}

	deleted, err = db.NewPostRepository(repo).Delete(ctx, post.ID)
	if err != nil || deleted {
		t.Fatalf("second Delete() = %v, %v; want false, nil", deleted, err)
	}
}

func TestInitialize_BootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	database := dbtest.New(t)
	bootstrap := config.BootstrapConfig{AdminUsername: "root", AdminPassword: "secret"}
	hash := func(pw string) (string, error) { return "hashed:" + pw, nil }

	for i := 0; i < 2; i++ {
		if err := db.Initialize(ctx, database, bootstrap, hash); err != nil {
			t.Fatalf("Initialize() run %d error = %v", i+1, err)
		}
	}

	users := db.NewUserRepository(db.NewRepository(database.DB))
	all, err := users.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d users, want 1", len(all))
	}
	if !all[0].IsAdmin || all[0].PasswordHash != "hashed:secret" {
		t.Errorf("bootstrap admin = %+v", all[0])
	}
}

func TestInitialize_PromotesExistingUser(t *testing.T) {
	ctx := context.Background()
	database := dbtest.New(t)
	repo := db.NewRepository(database.DB)
	seedUser(t, repo, "root")

	err := db.Initialize(ctx, database, config.BootstrapConfig{AdminUsername: "root", AdminPassword: "pw"}, nil)
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	user, err := db.NewUserRepository(repo).GetByUsername(ctx, "root")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if !user.IsAdmin {
		t.Error("existing bootstrap user was not promoted")
	}
}
