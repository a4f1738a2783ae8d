package striperepo

type CreateIntentReq struct {
	AmountCents    int64
	Currency       string
	RentalID       int64
	UserID         int64
	ProductID      int64
	IdempotencyKey string
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

type Repo interface {
	CreateIntent(req CreateIntentReq) (*Intent, error)
	CancelIntent(intentID string) error
}
