package models

// Коллекции хранилища, на изменения которых подписываются панели консоли.
const (
	CollectionUsers       = "users"
	CollectionWithdrawals = "withdrawals"
	CollectionEarnings    = "earnings"
)

// ValidCollections список коллекций, которые принимает канал изменений.
var ValidCollections = []string{
	CollectionUsers,
	CollectionWithdrawals,
	CollectionEarnings,
}

// IsValidCollection сообщает, знает ли консоль такую коллекцию.
func IsValidCollection(name string) bool {
	for _, c := range ValidCollections {
		if c == name {
			return true
		}
	}
	return false
}
