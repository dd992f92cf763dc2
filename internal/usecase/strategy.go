package usecase

import (
	"fmt"

	"github.com/motocrm/balance/internal/domain"
)

// PaymentStrategy maps a payment method onto a balance bucket. Variants are
// stateless; dispatch is a pure function over the payment-method enum.
type PaymentStrategy interface {
	Handles(method domain.PaymentMethod) bool
	BalanceType() domain.BalanceType
}

// CashStrategy routes CASH payments to the cash bucket.
type CashStrategy struct{}

func (CashStrategy) Handles(method domain.PaymentMethod) bool {
	return method == domain.PaymentMethodCash
}

func (CashStrategy) BalanceType() domain.BalanceType {
	return domain.BalanceTypeCash
}

// BankStrategy routes BANK_TRANSFER and CARD payments to the bank bucket.
type BankStrategy struct{}

func (BankStrategy) Handles(method domain.PaymentMethod) bool {
	return method == domain.PaymentMethodBankTransfer || method == domain.PaymentMethodCard
}

func (BankStrategy) BalanceType() domain.BalanceType {
	return domain.BalanceTypeBank
}

var paymentStrategies = []PaymentStrategy{
	CashStrategy{},
	BankStrategy{},
}

// StrategyFor resolves the strategy whose Handles predicate matches.
func StrategyFor(method domain.PaymentMethod) (PaymentStrategy, error) {
	for _, s := range paymentStrategies {
		if s.Handles(method) {
			return s, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownPaymentMethod, method)
}

// OperationFor resolves direction and apply/reverse into a ledger operation:
// INCOME+apply=ADD, INCOME+reverse=SUBTRACT, EXPENSE+apply=SUBTRACT,
// EXPENSE+reverse=ADD.
func OperationFor(direction domain.Direction, reverse bool) domain.OperationType {
	income := direction == domain.DirectionIncome
	if income != reverse {
		return domain.OperationAdd
	}

	return domain.OperationSubtract
}
