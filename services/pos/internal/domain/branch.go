package domain

// BranchStatusActive is the inventory status of branches that can sell.
const BranchStatusActive = "ACTIVE"

// Branch is a pharmacy location a sale can be made from.
type Branch struct {
	ID      int64  `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Phone   string `json:"phone"`
	Status  string `json:"status"`
}

// Active reports whether the branch is open for sales.
func (b Branch) Active() bool {
	return b.Status == "" || b.Status == BranchStatusActive
}
