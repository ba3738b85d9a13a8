package models

import (
	"errors"
	"io"
	"strconv"
)

type CartStatus string

const (
	CartStatusActive    CartStatus = "Active"
	CartStatusConverted CartStatus = "Converted"
)

func (t CartStatus) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(t))))
}

func (t *CartStatus) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("cart status must be string")
	}
	switch str {
	case "Active":
		*t = CartStatusActive
	case "Converted":
		*t = CartStatusConverted
	default:
		return errors.New("invalid cart status")
	}
	return nil
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusComplete   OrderStatus = "Complete"
	OrderStatusCancelled  OrderStatus = "Cancelled"
	OrderStatusOnHold     OrderStatus = "OnHold"
	OrderStatusRefunded   OrderStatus = "Refunded"
)

func (t OrderStatus) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(t))))
}

func (t *OrderStatus) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("order status must be string")
	}
	switch str {
	case "Pending":
		*t = OrderStatusPending
	case "Processing":
		*t = OrderStatusProcessing
	case "Complete":
		*t = OrderStatusComplete
	case "Cancelled":
		*t = OrderStatusCancelled
	case "OnHold":
		*t = OrderStatusOnHold
	case "Refunded":
		*t = OrderStatusRefunded
	default:
		return errors.New("invalid order status")
	}
	return nil
}

func (t OrderStatus) IsValid() bool {
	var check OrderStatus
	return check.UnmarshalGQL(string(t)) == nil
}

// IsTerminal reports whether no further status change is allowed.
func (t OrderStatus) IsTerminal() bool {
	return t == OrderStatusCancelled || t == OrderStatusRefunded
}

type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "Pending"
	PaymentStatusAuthorized        PaymentStatus = "Authorized"
	PaymentStatusPaid              PaymentStatus = "Paid"
	PaymentStatusPartiallyRefunded PaymentStatus = "PartiallyRefunded"
	PaymentStatusRefunded          PaymentStatus = "Refunded"
	PaymentStatusFailed            PaymentStatus = "Failed"
)

func (t PaymentStatus) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(t))))
}

func (t *PaymentStatus) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("payment status must be string")
	}
	switch str {
	case "Pending":
		*t = PaymentStatusPending
	case "Authorized":
		*t = PaymentStatusAuthorized
	case "Paid":
		*t = PaymentStatusPaid
	case "PartiallyRefunded":
		*t = PaymentStatusPartiallyRefunded
	case "Refunded":
		*t = PaymentStatusRefunded
	case "Failed":
		*t = PaymentStatusFailed
	default:
		return errors.New("invalid payment status")
	}
	return nil
}

func (t PaymentStatus) IsValid() bool {
	var check PaymentStatus
	return check.UnmarshalGQL(string(t)) == nil
}

type ShippingMode string

const (
	ShippingModeAir     ShippingMode = "Air"
	ShippingModeSea     ShippingMode = "Sea"
	ShippingModeLand    ShippingMode = "Land"
	ShippingModeExpress ShippingMode = "Express"
)

func (t ShippingMode) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(t))))
}

func (t *ShippingMode) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("shipping mode must be string")
	}
	switch str {
	case "Air":
		*t = ShippingModeAir
	case "Sea":
		*t = ShippingModeSea
	case "Land":
		*t = ShippingModeLand
	case "Express":
		*t = ShippingModeExpress
	default:
		return errors.New("invalid shipping mode")
	}
	return nil
}

type ProductSort string

const (
	ProductSortNewest    ProductSort = "Newest"
	ProductSortPriceAsc  ProductSort = "PriceAsc"
	ProductSortPriceDesc ProductSort = "PriceDesc"
	ProductSortName      ProductSort = "Name"
)

// ParseProductSort accepts the enum name or the storefront query form (price_asc).
func ParseProductSort(s string) ProductSort {
	switch s {
	case "PriceAsc", "price_asc":
		return ProductSortPriceAsc
	case "PriceDesc", "price_desc":
		return ProductSortPriceDesc
	case "Name", "name":
		return ProductSortName
	default:
		return ProductSortNewest
	}
}

// Outbox publish statuses for OutboxEvent.PublishStatus.
const (
	OutboxPublishStatusPending    = "PENDING"
	OutboxPublishStatusProcessing = "PROCESSING"
	OutboxPublishStatusSent       = "SENT"
	OutboxPublishStatusFailed     = "FAILED"
	OutboxPublishStatusDead       = "DEAD"
)

// Domain event names carried by the outbox and the audit log.
const (
	EventOrderPlaced         = "order.placed"
	EventOrderStatusChanged  = "order.status_changed"
	EventProductCreated      = "product.created"
	EventProductUpdated      = "product.updated"
	EventProductDeleted      = "product.deleted"
	EventExchangeRateChanged = "exchange_rate.changed"
	EventExchangeRateDeleted = "exchange_rate.deleted"
)
