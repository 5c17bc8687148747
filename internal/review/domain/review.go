package domain

import "time"

type Review struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"productId"`
	AuthorName string    `json:"authorName"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	Approved   bool      `json:"approved"`
	CreatedAt  time.Time `json:"createdAt"`
}

type CreateReviewRequest struct {
	AuthorName string `json:"authorName" binding:"required,max=80"`
	Rating     int    `json:"rating" binding:"required"`
	Comment    string `json:"comment" binding:"max=2000"`
}

// Summary aggregates the approved reviews of a product.
type Summary struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

type ProductReviews struct {
	Reviews []Review `json:"reviews"`
	Summary Summary  `json:"summary"`
}
