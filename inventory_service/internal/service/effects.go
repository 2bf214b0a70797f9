package service

// LowStockThreshold is the quantity at or below which a restock alert is raised.
const LowStockThreshold = 2

// Effect is a notification decided by a committed mutation. Effects are executed by a Dispatcher.
type Effect interface {
	isEffect()
}

type NotifyOrderPlaced struct {
	ProductID       int64
	Name            string
	Model           string
	Ordered         int32
	Remaining       int32
	CustomerName    string
	CustomerAddress string
}

type NotifyLowStock struct {
	ProductID int64
	Name      string
	Model     string
	Remaining int32
}

func (NotifyOrderPlaced) isEffect() {}
func (NotifyLowStock) isEffect()    {}

func isLowStock(quantity int32) bool {
	return quantity <= LowStockThreshold
}

// lowStockAfterUpdate reports whether an administrative update should raise an alert:
// the quantity crossed down into the threshold, or was already inside it and still fell.
func lowStockAfterUpdate(oldQty, newQty int32) bool {
	return isLowStock(newQty) && (!isLowStock(oldQty) || newQty < oldQty)
}
