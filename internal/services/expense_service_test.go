package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"troskovi/internal/core"
	"troskovi/internal/currency"
)

func testConverter(t *testing.T) *currency.Converter {
	t.Helper()
	conv, err := currency.NewConverter(117.0)
	if err != nil {
		t.Fatalf("NewConverter: %v", err)
	}
	return conv
}

func TestExpenseServiceCreateDefaults(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := NewExpenseService(store, testConverter(t), pub)

	e, err := svc.Create(context.Background(), CreateExpenseInput{
		Amount:       2340,
		Currency:     core.RSD,
		ShopName:     "Maxi",
		PurchaseDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		CreatedBy:    "ana",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if e.ProductDescription != "Purchase at Maxi" {
		t.Errorf("description = %q, want %q", e.ProductDescription, "Purchase at Maxi")
	}
	if e.Category != "Groceries" {
		t.Errorf("category = %q, want Groceries", e.Category)
	}
	if e.PaymentMethod != "Card" {
		t.Errorf("paymentMethod = %q, want Card", e.PaymentMethod)
	}
	if e.Tags == nil || len(e.Tags) != 0 {
		t.Errorf("tags = %v, want empty slice", e.Tags)
	}
	if e.CreationMethod != core.CreatedManually {
		t.Errorf("creationMethod = %q, want %q", e.CreationMethod, core.CreatedManually)
	}
	if e.RsdAmount != 2340 {
		t.Errorf("rsdAmount = %v, want 2340", e.RsdAmount)
	}
	if e.EurAmount != 20 {
		t.Errorf("eurAmount = %v, want 20", e.EurAmount)
	}
	if e.ExchangeRate != 117.0 {
		t.Errorf("exchangeRate = %v, want 117", e.ExchangeRate)
	}
	if len(pub.messages) != 1 {
		t.Errorf("published %d messages, want 1", len(pub.messages))
	}
}

func TestExpenseServiceCreateUnknownShopFallsBackToGeneral(t *testing.T) {
	store := newFakeStore()
	svc := NewExpenseService(store, testConverter(t), nil)

	e, err := svc.Create(context.Background(), CreateExpenseInput{
		Amount:       10,
		Currency:     core.EUR,
		ShopName:     "Some Unknown Place",
		PurchaseDate: time.Now(),
		CreatedBy:    "ana",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.Category != "General" {
		t.Errorf("category = %q, want General", e.Category)
	}
}

func TestExpenseServiceCreateRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		in      CreateExpenseInput
		wantErr error
	}{
		{
			name: "non-positive amount",
			in: CreateExpenseInput{
				Amount: 0, Currency: core.EUR, ShopName: "Maxi",
				PurchaseDate: time.Now(), CreatedBy: "ana",
			},
			wantErr: core.ErrInvalidAmount,
		},
		{
			name: "unknown currency",
			in: CreateExpenseInput{
				Amount: 10, Currency: "USD", ShopName: "Maxi",
				PurchaseDate: time.Now(), CreatedBy: "ana",
			},
			wantErr: core.ErrInvalidCurrency,
		},
		{
			name: "missing shop",
			in: CreateExpenseInput{
				Amount: 10, Currency: core.EUR,
				PurchaseDate: time.Now(), CreatedBy: "ana",
			},
			wantErr: core.ErrEmptyShopName,
		},
	}

	store := newFakeStore()
	svc := NewExpenseService(store, testConverter(t), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if len(store.expenses) != 0 {
		t.Errorf("store holds %d expenses after rejected creates, want 0", len(store.expenses))
	}
}

func TestExpenseServiceCreatePublishFailureDoesNotFailCreate(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{fail: true}
	svc := NewExpenseService(store, testConverter(t), pub)

	_, err := svc.Create(context.Background(), CreateExpenseInput{
		Amount: 10, Currency: core.EUR, ShopName: "Maxi",
		PurchaseDate: time.Now(), CreatedBy: "ana",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(store.expenses) != 1 {
		t.Errorf("store holds %d expenses, want 1", len(store.expenses))
	}
}

func TestExpenseServiceUpdateRecomputesCurrencyOnlyWhenTouched(t *testing.T) {
	store := newFakeStore()
	svc := NewExpenseService(store, testConverter(t), nil)
	ctx := context.Background()

	e, err := svc.Create(ctx, CreateExpenseInput{
		Amount: 100, Currency: core.EUR, ShopName: "Maxi",
		PurchaseDate: time.Now(), CreatedBy: "ana",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Patching only the shop name must not touch any currency field.
	shop := "Lidl"
	got, err := svc.Update(ctx, e.ID, core.ExpenseUpdate{ShopName: &shop})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.ShopName != "Lidl" {
		t.Errorf("shopName = %q, want Lidl", got.ShopName)
	}
	if got.EurAmount != e.EurAmount || got.RsdAmount != e.RsdAmount || got.ExchangeRate != e.ExchangeRate {
		t.Errorf("currency fields changed on shop-only update: %+v", got)
	}
	if got.Category != e.Category {
		t.Errorf("category changed on shop-only update: %q", got.Category)
	}

	// Patching the amount recomputes both sides.
	amount := 200.0
	got, err = svc.Update(ctx, e.ID, core.ExpenseUpdate{Amount: &amount})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.EurAmount != 200 {
		t.Errorf("eurAmount = %v, want 200", got.EurAmount)
	}
	if got.RsdAmount != 23400 {
		t.Errorf("rsdAmount = %v, want 23400", got.RsdAmount)
	}
}

func TestExpenseServiceUpdateMissingRecord(t *testing.T) {
	svc := NewExpenseService(newFakeStore(), testConverter(t), nil)
	amount := 10.0
	_, err := svc.Update(context.Background(), "nope", core.ExpenseUpdate{Amount: &amount})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Update error = %v, want ErrNotFound", err)
	}
}

func TestIncomeServiceCreateDefaults(t *testing.T) {
	store := newFakeStore()
	svc := NewIncomeService(store, testConverter(t), nil)

	in, err := svc.Create(context.Background(), CreateIncomeInput{
		Amount:       1500,
		Currency:     core.EUR,
		Source:       "Acme d.o.o.",
		IncomeType:   "Salary",
		DateReceived: time.Now(),
		CreatedBy:    "ana",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if in.Description != "Income from Acme d.o.o." {
		t.Errorf("description = %q", in.Description)
	}
	if in.RsdAmount != 175500 {
		t.Errorf("rsdAmount = %v, want 175500", in.RsdAmount)
	}
}

func TestIncomeServiceCreateRejectsUnknownType(t *testing.T) {
	svc := NewIncomeService(newFakeStore(), testConverter(t), nil)
	_, err := svc.Create(context.Background(), CreateIncomeInput{
		Amount: 10, Currency: core.EUR, Source: "X",
		IncomeType: "Lottery", DateReceived: time.Now(), CreatedBy: "ana",
	})
	if !errors.Is(err, core.ErrInvalidIncomeType) {
		t.Errorf("Create error = %v, want ErrInvalidIncomeType", err)
	}
}
