// Package seed populates a development database with demo content.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Fixed demo groups so seeded URLs are predictable.
var groups = []models.Group{
	{Title: "Travel notes", Slug: "travel", Description: "Trips, routes, and places worth the detour."},
	{Title: "Kitchen diaries", Slug: "kitchen", Description: "Recipes and the disasters behind them."},
	{Title: "Engineering", Slug: "engineering", Description: "Notes from the software trenches."},
	{Title: "Book club", Slug: "books", Description: "What we read and what we thought."},
}

// Seed populates the database with demo users, groups, posts, comments, and
// follow edges. Existing content is cleared first.
func Seed(db *gorm.DB) error {
	log.Println("🌱 Starting database seeding...")
	gofakeit.Seed(42)

	if err := clearData(db); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}

	users, err := createUsers(db)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ Created %d users", len(users))

	createdGroups, err := createGroups(db)
	if err != nil {
		return fmt.Errorf("failed to create groups: %w", err)
	}
	log.Printf("✓ Created %d groups", len(createdGroups))

	posts, err := createPosts(db, users, createdGroups)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ Created %d posts", len(posts))

	commentCount, err := createComments(db, users, posts)
	if err != nil {
		return fmt.Errorf("failed to create comments: %w", err)
	}
	log.Printf("✓ Created %d comments", commentCount)

	followCount, err := createFollows(db, users)
	if err != nil {
		return fmt.Errorf("failed to create follows: %w", err)
	}
	log.Printf("✓ Created %d follows", followCount)

	log.Println("🎉 Database seeding completed!")
	log.Println("Demo login: admin@inkwell.local / password123")
	return nil
}

func clearData(db *gorm.DB) error {
	for _, model := range []any{
		&models.Comment{}, &models.Follow{}, &models.Post{},
		&models.Group{}, &models.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := []models.User{{
		Username: "admin",
		Email:    "admin@inkwell.local",
		Password: string(hashed),
		IsAdmin:  true,
	}}
	for i := 0; i < 14; i++ {
		users = append(users, models.User{
			Username: gofakeit.Username(),
			Email:    gofakeit.Email(),
			Password: string(hashed),
		})
	}

	if err := db.Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func createGroups(db *gorm.DB) ([]models.Group, error) {
	created := make([]models.Group, len(groups))
	copy(created, groups)
	if err := db.Create(&created).Error; err != nil {
		return nil, err
	}
	return created, nil
}

func createPosts(db *gorm.DB, users []models.User, groups []models.Group) ([]models.Post, error) {
	var posts []models.Post
	now := time.Now().UTC()

	for i := 0; i < 80; i++ {
		author := users[rand.Intn(len(users))]
		post := models.Post{
			Text:     gofakeit.Paragraph(1, 3, 12, " "),
			PubDate:  now.Add(-time.Duration(rand.Intn(60*24)) * time.Minute),
			AuthorID: author.ID,
		}
		// Roughly a third of posts are ungrouped.
		if rand.Intn(3) > 0 {
			groupID := groups[rand.Intn(len(groups))].ID
			post.GroupID = &groupID
		}
		posts = append(posts, post)
	}

	if err := db.Create(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func createComments(db *gorm.DB, users []models.User, posts []models.Post) (int, error) {
	var comments []models.Comment
	for _, post := range posts {
		for i := 0; i < rand.Intn(4); i++ {
			commenter := users[rand.Intn(len(users))]
			comments = append(comments, models.Comment{
				Text:     gofakeit.Sentence(10),
				PostID:   post.ID,
				AuthorID: commenter.ID,
			})
		}
	}
	if len(comments) == 0 {
		return 0, nil
	}
	if err := db.Create(&comments).Error; err != nil {
		return 0, err
	}
	return len(comments), nil
}

func createFollows(db *gorm.DB, users []models.User) (int, error) {
	var follows []models.Follow
	seen := map[[2]uint]bool{}
	for _, user := range users {
		for i := 0; i < rand.Intn(5); i++ {
			author := users[rand.Intn(len(users))]
			key := [2]uint{user.ID, author.ID}
			if author.ID == user.ID || seen[key] {
				continue
			}
			seen[key] = true
			follows = append(follows, models.Follow{UserID: user.ID, AuthorID: author.ID})
		}
	}
	if len(follows) == 0 {
		return 0, nil
	}
	if err := db.Create(&follows).Error; err != nil {
		return 0, err
	}
	return len(follows), nil
}
