// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"quill/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how much data the seeder generates.
type Options struct {
	Users    int
	Groups   int
	Posts    int
	Comments int
	// MaxDays spreads publication dates over the recent past.
	MaxDays int
}

// DefaultOptions returns a small but lively data set.
func DefaultOptions() Options {
	return Options{Users: 20, Groups: 5, Posts: 120, Comments: 300, MaxDays: 90}
}

// Seeder populates the database with fake users, groups, posts, comments and
// follows.
type Seeder struct {
	db   *gorm.DB
	opts Options
	rand *rand.Rand
	log  *slog.Logger
}

// NewSeeder creates a seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options, log *slog.Logger) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		opts: opts,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
		log:  log,
	}
}

// ClearAll wipes every seeded table, children first.
func (s *Seeder) ClearAll() error {
	for _, model := range []interface{}{
		&models.Comment{},
		&models.Follow{},
		&models.Post{},
		&models.Group{},
		&models.User{},
	} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) pastDate() time.Time {
	maxDays := s.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(s.rand.Intn(maxDays))*24*time.Hour +
		time.Duration(s.rand.Intn(24))*time.Hour +
		time.Duration(s.rand.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

func (s *Seeder) createUsers() ([]*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		user := &models.User{
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Email:    gofakeit.Email(),
			Password: string(hashed),
		}
		if err := s.db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) createGroups() ([]*models.Group, error) {
	groups := make([]*models.Group, 0, s.opts.Groups)
	for i := 0; i < s.opts.Groups; i++ {
		noun := gofakeit.NounAbstract()
		group := &models.Group{
			Title:       fmt.Sprintf("%s %s", gofakeit.AdjectiveDescriptive(), noun),
			Slug:        fmt.Sprintf("%s-%d", gofakeit.Word(), i),
			Description: gofakeit.Paragraph(1, 2, 8, " "),
		}
		if err := s.db.Create(group).Error; err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func (s *Seeder) createPosts(users []*models.User, groups []*models.Group) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, s.opts.Posts)
	for i := 0; i < s.opts.Posts; i++ {
		post := &models.Post{
			Text:     gofakeit.Paragraph(1, 3, 10, "\n"),
			AuthorID: users[s.rand.Intn(len(users))].ID,
			PubDate:  s.pastDate(),
		}
		// Roughly two thirds of posts belong to a group.
		if len(groups) > 0 && s.rand.Intn(3) != 0 {
			post.GroupID = &groups[s.rand.Intn(len(groups))].ID
		}
		if err := s.db.Create(post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) createComments(users []*models.User, posts []*models.Post) error {
	for i := 0; i < s.opts.Comments; i++ {
		comment := &models.Comment{
			Text:     gofakeit.Sentence(s.rand.Intn(15) + 3),
			PostID:   posts[s.rand.Intn(len(posts))].ID,
			AuthorID: users[s.rand.Intn(len(users))].ID,
			Created:  s.pastDate(),
		}
		if err := s.db.Create(comment).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) createFollows(users []*models.User) error {
	for _, user := range users {
		// Each user follows a handful of others.
		for i := 0; i < s.rand.Intn(5); i++ {
			author := users[s.rand.Intn(len(users))]
			if author.ID == user.ID {
				continue
			}
			follow := &models.Follow{UserID: user.ID, AuthorID: author.ID}
			if err := s.db.Where("user_id = ? AND author_id = ?", user.ID, author.ID).
				FirstOrCreate(follow).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// Run generates the full data set.
func (s *Seeder) Run() error {
	if s.opts.Users == 0 || s.opts.Posts == 0 {
		return fmt.Errorf("seed options need at least one user and one post")
	}

	users, err := s.createUsers()
	if err != nil {
		return fmt.Errorf("seeding users: %w", err)
	}
	groups, err := s.createGroups()
	if err != nil {
		return fmt.Errorf("seeding groups: %w", err)
	}
	posts, err := s.createPosts(users, groups)
	if err != nil {
		return fmt.Errorf("seeding posts: %w", err)
	}
	if err := s.createComments(users, posts); err != nil {
		return fmt.Errorf("seeding comments: %w", err)
	}
	if err := s.createFollows(users); err != nil {
		return fmt.Errorf("seeding follows: %w", err)
	}

	s.log.Info("seed complete",
		slog.Int("users", len(users)),
		slog.Int("groups", len(groups)),
		slog.Int("posts", len(posts)),
	)
	return nil
}
