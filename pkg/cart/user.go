package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hesham156/wafarle/pkg/models"
	"gorm.io/gorm"
)

// UserRepository stores an authenticated user's cart as rows in the cart
// table, one row per (user, product). Product display fields are joined live
// from the products table on every read, so price changes show up without
// touching the cart.
type UserRepository struct {
	db     *gorm.DB
	userID string
}

func NewUserRepository(db *gorm.DB, userID string) *UserRepository {
	return &UserRepository{db: db, userID: userID}
}

func (u *UserRepository) Items(ctx context.Context) ([]Item, error) {
	var rows []models.CartItem
	err := u.db.WithContext(ctx).
		Where("user_id = ?", u.userID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []Item{}, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ProductID
	}
	var products []models.Product
	if err := u.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		item := Item{
			ID:        row.ID,
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
		}
		if p, ok := byID[row.ProductID]; ok {
			item.Product = SnapshotProduct(p)
		}
		items = append(items, item)
	}
	return items, nil
}

func (u *UserRepository) Add(ctx context.Context, product ProductInfo, quantity int) error {
	var existing models.CartItem
	err := u.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", u.userID, product.ID).
		First(&existing).Error
	switch {
	case err == nil:
		return u.db.WithContext(ctx).
			Model(&existing).
			Update("quantity", existing.Quantity+quantity).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		row := &models.CartItem{
			ID:        uuid.NewString(),
			UserID:    u.userID,
			ProductID: product.ID,
			Quantity:  quantity,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		return u.db.WithContext(ctx).Create(row).Error
	default:
		return err
	}
}

func (u *UserRepository) SetQuantity(ctx context.Context, itemID string, quantity int) error {
	return u.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, u.userID).
		Update("quantity", quantity).Error
}

func (u *UserRepository) Remove(ctx context.Context, itemID string) error {
	return u.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, u.userID).
		Delete(&models.CartItem{}).Error
}

func (u *UserRepository) Clear(ctx context.Context) error {
	return u.db.WithContext(ctx).
		Where("user_id = ?", u.userID).
		Delete(&models.CartItem{}).Error
}
