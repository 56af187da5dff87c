package domain

// Collection names one cached catalog listing.
type Collection string

const (
	CollectionProducts   Collection = "products"
	CollectionServices   Collection = "services"
	CollectionSellers    Collection = "sellers"
	CollectionCategories Collection = "categories"
)

// StaleSet lists the collections an admin mutation invalidated. Callers use
// it to decide what to refetch instead of reloading everything after every
// edit.
type StaleSet []Collection

func (s StaleSet) Contains(c Collection) bool {
	for _, got := range s {
		if got == c {
			return true
		}
	}
	return false
}
