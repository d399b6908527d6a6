package sandbox

import (
	"github.com/quarrylab/quarry/internal/orders"
	"github.com/quarrylab/quarry/internal/policy"
)

// Seed fixtures. The user credentials are intentionally well known: the
// whole point of the sandbox is that testers can log in with them.

type seedUser struct {
	Email    string
	Username string
	FullName string
	Password string
	Role     policy.Role
}

type seedCategory struct {
	Name        string
	Description string
}

type seedProduct struct {
	Name         string
	Description  string
	CategoryName string
	Price        float64
	Stock        int
}

var seedUsers = []seedUser{
	{Email: "admin@qa-test.com", Username: "admin", FullName: "Admin User", Password: "admin123", Role: policy.RoleAdmin},
	{Email: "tester@qa-test.com", Username: "tester", FullName: "Test User", Password: "tester123", Role: policy.RoleTester},
	{Email: "viewer@qa-test.com", Username: "viewer", FullName: "Viewer User", Password: "viewer123", Role: policy.RoleViewer},
}

var seedCategories = []seedCategory{
	{Name: "Electronics", Description: "Computers, phones, and gadgets"},
	{Name: "Clothing", Description: "Apparel and accessories"},
	{Name: "Home & Garden", Description: "Furniture of appliances"},
	{Name: "Books", Description: "Physical and digital books"},
	{Name: "Sports", Description: "Sports equipment and gear"},
}

var seedProducts = []seedProduct{
	{Name: "Laptop Pro 15", CategoryName: "Electronics", Price: 1299.99, Stock: 15, Description: "Fifteen inch workhorse for development and test rigs."},
	{Name: "Wireless Mouse", CategoryName: "Electronics", Price: 49.99, Stock: 100, Description: "Low-latency wireless mouse with a long battery life."},
	{Name: "USB-C Hub", CategoryName: "Electronics", Price: 79.99, Stock: 50, Description: "Seven-port hub with passthrough charging."},
	{Name: "Mechanical Keyboard", CategoryName: "Electronics", Price: 149.99, Stock: 30, Description: "Tactile switches, full-size layout."},
	{Name: "4K Monitor", CategoryName: "Electronics", Price: 399.99, Stock: 20, Description: "27 inch 4K panel with height adjustment."},
	{Name: "Cotton T-Shirt", CategoryName: "Clothing", Price: 24.99, Stock: 200, Description: "Plain cotton tee in assorted colors."},
	{Name: "Denim Jeans", CategoryName: "Clothing", Price: 59.99, Stock: 150, Description: "Straight cut denim, mid wash."},
	{Name: "Running Shoes", CategoryName: "Clothing", Price: 89.99, Stock: 75, Description: "Cushioned trainers for road running."},
	{Name: "Winter Jacket", CategoryName: "Clothing", Price: 149.99, Stock: 40, Description: "Insulated jacket rated for cold commutes."},
	{Name: "Desk Lamp", CategoryName: "Home & Garden", Price: 34.99, Stock: 80, Description: "Adjustable LED desk lamp with dimmer."},
	{Name: "Office Chair", CategoryName: "Home & Garden", Price: 249.99, Stock: 25, Description: "Ergonomic chair with lumbar support."},
	{Name: "Plant Pot Set", CategoryName: "Home & Garden", Price: 29.99, Stock: 120, Description: "Set of three ceramic pots with saucers."},
	{Name: "Coffee Table", CategoryName: "Home & Garden", Price: 199.99, Stock: 15, Description: "Oak veneer table with storage shelf."},
	{Name: "Python Cookbook", CategoryName: "Books", Price: 44.99, Stock: 60, Description: "Recipes for everyday programming problems."},
	{Name: "Design Patterns", CategoryName: "Books", Price: 49.99, Stock: 45, Description: "The classic catalog of reusable designs."},
	{Name: "Clean Code", CategoryName: "Books", Price: 39.99, Stock: 70, Description: "Essays on writing maintainable software."},
	{Name: "Yoga Mat", CategoryName: "Sports", Price: 29.99, Stock: 90, Description: "Non-slip mat, six millimeters thick."},
	{Name: "Dumbbells Set", CategoryName: "Sports", Price: 79.99, Stock: 35, Description: "Pair of adjustable dumbbells up to 20kg."},
	{Name: "Tennis Racket", CategoryName: "Sports", Price: 129.99, Stock: 20, Description: "Graphite frame strung at medium tension."},
	{Name: "Soccer Ball", CategoryName: "Sports", Price: 24.99, Stock: 100, Description: "Match-weight ball, size five."},
}

// seedOrderStatuses cycles through the lifecycle so the sandbox always
// contains orders in every state.
var seedOrderStatuses = []orders.Status{
	orders.StatusPending,
	orders.StatusConfirmed,
	orders.StatusShipped,
	orders.StatusCancelled,
}

var seedAddresses = []string{
	"12 Harbor View, Portland, OR 97201",
	"480 Linden Ave, Austin, TX 78701",
	"9 Castle Row, Boston, MA 02108",
	"77 Prospect St, Denver, CO 80202",
	"301 Cedar Loop, Seattle, WA 98101",
}

const seedOrderCount = 10

// seedOrderItems deterministically picks product lines for the i-th seed
// order: between one and four products, quantity one each, matching the
// fixture shape demos expect.
func seedOrderItems(i, productCount int) []int {
	n := i%4 + 1
	items := make([]int, 0, n)
	for k := 0; k < n; k++ {
		items = append(items, (i*3+k*7)%productCount)
	}
	return items
}
