package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cristijna/SaboresGo/internal/auth"
	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/cristijna/SaboresGo/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Errors returned by the weekly menu service.
var (
	ErrSupplierExcluded    = errors.New("suppliers cannot use the weekly menu")
	ErrNotCustomer         = errors.New("customer account required")
	ErrNoAgreement         = errors.New("weekly menu requires an active company agreement")
	ErrInvalidWeekday      = errors.New("invalid weekday")
	ErrMenuPaid            = errors.New("weekly menu already paid")
	ErrEmptyMenu           = errors.New("weekly menu has no dishes")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// WeeklyMenuStore defines the DB methods needed by the weekly menu.
// Satisfied by *database.Queries (and its WithTx variant).
type WeeklyMenuStore interface {
	GetCustomerAgreement(ctx context.Context, id uuid.UUID) (database.GetCustomerAgreementRow, error)
	GetOrCreateWeeklyMenu(ctx context.Context, customerID uuid.UUID) (database.WeeklyMenu, error)
	ListWeeklyMenuItems(ctx context.Context, menuID uuid.UUID) ([]database.ListWeeklyMenuItemsRow, error)
	GetDishWithSupplier(ctx context.Context, id uuid.UUID) (database.GetDishWithSupplierRow, error)
	ListApprovedDishes(ctx context.Context) ([]database.Dish, error)
	UpsertWeeklyMenuItem(ctx context.Context, arg database.UpsertWeeklyMenuItemParams) (database.WeeklyMenuItem, error)
	UpdateWeeklyMenuTotal(ctx context.Context, arg database.UpdateWeeklyMenuTotalParams) (database.WeeklyMenu, error)
	DebitCustomerBalance(ctx context.Context, arg database.DebitCustomerBalanceParams) (pgtype.Numeric, error)
	MarkWeeklyMenuPaid(ctx context.Context, id uuid.UUID) (database.WeeklyMenu, error)
}

// NewWeeklyMenuStore creates a WeeklyMenuStore from a DBTX (pool or tx).
type NewWeeklyMenuStore func(db database.DBTX) WeeklyMenuStore

// WeekSlot is one day of the menu. Item is nil when nothing was chosen.
type WeekSlot struct {
	Weekday string
	Label   string
	Item    *database.ListWeeklyMenuItemsRow
}

type Week struct {
	Menu  database.WeeklyMenu
	Slots []WeekSlot
}

type SlotOptions struct {
	Menu   database.WeeklyMenu
	Slot   WeekSlot
	Dishes []database.Dish
}

type PayResult struct {
	Menu    database.WeeklyMenu
	Balance decimal.Decimal
}

type WeeklyMenuService struct {
	pool     TxBeginner
	store    WeeklyMenuStore
	newStore NewWeeklyMenuStore
}

func NewWeeklyMenuService(pool TxBeginner, store WeeklyMenuStore, newStore NewWeeklyMenuStore) *WeeklyMenuService {
	return &WeeklyMenuService{pool: pool, store: store, newStore: newStore}
}

// BuildWeek lays items out Monday to Sunday; days without an item get a nil slot.
func BuildWeek(menu database.WeeklyMenu, items []database.ListWeeklyMenuItemsRow) *Week {
	byDay := make(map[string]*database.ListWeeklyMenuItemsRow, len(items))
	for i := range items {
		byDay[items[i].Weekday] = &items[i]
	}
	slots := make([]WeekSlot, len(enum.Weekdays))
	for i, day := range enum.Weekdays {
		slots[i] = WeekSlot{Weekday: day, Label: enum.WeekdayLabel(day), Item: byDay[day]}
	}
	return &Week{Menu: menu, Slots: slots}
}

// MenuTotal sums price × quantity; items whose dish is gone count as zero.
func MenuTotal(items []database.ListWeeklyMenuItemsRow) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if !it.DishID.Valid || !it.DishPrice.Valid {
			continue
		}
		total = total.Add(numericToDecimal(it.DishPrice).Mul(decimal.NewFromInt32(it.Quantity)))
	}
	return total
}

// eligibleCustomer resolves the account to a customer with an active agreement.
func eligibleCustomer(ctx context.Context, store WeeklyMenuStore, acct auth.Account) (uuid.UUID, error) {
	if acct.Role == enum.UserRoleSupplier {
		return uuid.Nil, ErrSupplierExcluded
	}
	customerID, ok := acct.Customer()
	if !ok {
		return uuid.Nil, ErrNotCustomer
	}
	row, err := store.GetCustomerAgreement(ctx, customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrNotCustomer
		}
		return uuid.Nil, fmt.Errorf("get customer agreement: %w", err)
	}
	if !row.AgreementID.Valid || !row.AgreementActive {
		return uuid.Nil, ErrNoAgreement
	}
	return customerID, nil
}

// GetOrCreate returns the customer's menu, creating an empty one on first use.
func (s *WeeklyMenuService) GetOrCreate(ctx context.Context, acct auth.Account) (database.WeeklyMenu, error) {
	customerID, err := eligibleCustomer(ctx, s.store, acct)
	if err != nil {
		return database.WeeklyMenu{}, err
	}
	menu, err := s.store.GetOrCreateWeeklyMenu(ctx, customerID)
	if err != nil {
		return database.WeeklyMenu{}, fmt.Errorf("get or create weekly menu: %w", err)
	}
	return menu, nil
}

func (s *WeeklyMenuService) Week(ctx context.Context, acct auth.Account) (*Week, error) {
	menu, err := s.GetOrCreate(ctx, acct)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListWeeklyMenuItems(ctx, menu.ID)
	if err != nil {
		return nil, fmt.Errorf("list weekly menu items: %w", err)
	}
	return BuildWeek(menu, items), nil
}

// SlotOptions returns one day of the menu with the dishes it may be set to.
func (s *WeeklyMenuService) SlotOptions(ctx context.Context, acct auth.Account, weekday string) (*SlotOptions, error) {
	if !enum.IsWeekday(weekday) {
		return nil, ErrInvalidWeekday
	}
	week, err := s.Week(ctx, acct)
	if err != nil {
		return nil, err
	}
	dishes, err := s.store.ListApprovedDishes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list approved dishes: %w", err)
	}

	opts := &SlotOptions{Menu: week.Menu, Dishes: dishes}
	for _, slot := range week.Slots {
		if slot.Weekday == weekday {
			opts.Slot = slot
		}
	}
	return opts, nil
}

// AssignDish sets the dish of one weekday (quantity back to 1) and stores the
// re-summed total, in one transaction.
func (s *WeeklyMenuService) AssignDish(ctx context.Context, acct auth.Account, weekday string, dishID uuid.UUID) (*Week, error) {
	if !enum.IsWeekday(weekday) {
		return nil, ErrInvalidWeekday
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	customerID, err := eligibleCustomer(ctx, store, acct)
	if err != nil {
		return nil, err
	}

	menu, err := store.GetOrCreateWeeklyMenu(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("get or create weekly menu: %w", err)
	}
	if menu.Paid {
		return nil, ErrMenuPaid
	}

	// Only dishes offered by SlotOptions can be picked.
	dish, err := store.GetDishWithSupplier(ctx, dishID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDishNotFound
		}
		return nil, fmt.Errorf("get dish: %w", err)
	}
	if !dish.SupplierApproved {
		return nil, ErrDishNotFound
	}

	if _, err := store.UpsertWeeklyMenuItem(ctx, database.UpsertWeeklyMenuItemParams{
		MenuID:  menu.ID,
		Weekday: weekday,
		DishID:  dishID,
	}); err != nil {
		return nil, fmt.Errorf("upsert weekly menu item: %w", err)
	}

	items, err := store.ListWeeklyMenuItems(ctx, menu.ID)
	if err != nil {
		return nil, fmt.Errorf("list weekly menu items: %w", err)
	}

	menu, err = store.UpdateWeeklyMenuTotal(ctx, database.UpdateWeeklyMenuTotalParams{
		ID:    menu.ID,
		Total: decimalToNumeric(MenuTotal(items)),
	})
	if err != nil {
		return nil, fmt.Errorf("update weekly menu total: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return BuildWeek(menu, items), nil
}

// Pay debits the menu total from the customer's balance and locks the menu.
func (s *WeeklyMenuService) Pay(ctx context.Context, acct auth.Account) (*PayResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	customerID, err := eligibleCustomer(ctx, store, acct)
	if err != nil {
		return nil, err
	}

	menu, err := store.GetOrCreateWeeklyMenu(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("get or create weekly menu: %w", err)
	}
	if menu.Paid {
		return nil, ErrMenuPaid
	}

	total := numericToDecimal(menu.Total)
	if !total.IsPositive() {
		return nil, ErrEmptyMenu
	}

	balance, err := store.DebitCustomerBalance(ctx, database.DebitCustomerBalanceParams{
		ID:     customerID,
		Amount: menu.Total,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInsufficientBalance
		}
		return nil, fmt.Errorf("debit customer balance: %w", err)
	}

	menu, err = store.MarkWeeklyMenuPaid(ctx, menu.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMenuPaid
		}
		return nil, fmt.Errorf("mark weekly menu paid: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &PayResult{Menu: menu, Balance: numericToDecimal(balance)}, nil
}
