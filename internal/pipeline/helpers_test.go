package pipeline

import "orders-dashboard/internal/models"

func sampleOrders() []models.Order {
	return []models.Order{
		{OrderID: "A", ProductID: "P1", SalePrice: 100, Profit: 20, Region: "East", State: "New York", City: "New York City", Year: 2023, Month: 1, Segment: "Consumer", Category: "Technology", SubCategory: "Phones"},
		{OrderID: "A", ProductID: "P2", SalePrice: 50, Profit: -5, Region: "East", State: "New York", City: "Buffalo", Year: 2023, Month: 1, Segment: "Consumer", Category: "Furniture", SubCategory: "Chairs"},
		{OrderID: "B", ProductID: "P1", SalePrice: 200, Profit: 40, Region: "East", State: "Pennsylvania", City: "Philadelphia", Year: 2022, Month: 12, Segment: "Corporate", Category: "Technology", SubCategory: "Phones"},
		{OrderID: "C", ProductID: "P3", SalePrice: 80, Profit: 10, Region: "West", State: "California", City: "Los Angeles", Year: 2022, Month: 3, Segment: "Home Office", Category: "Office Supplies", SubCategory: "Paper"},
		{OrderID: "D", ProductID: "P3", SalePrice: 120, Profit: 30, Region: "West", State: "California", City: "San Diego", Year: 2023, Month: 3, Segment: "Consumer", Category: "Office Supplies", SubCategory: "Paper"},
		{OrderID: "E", ProductID: "", SalePrice: 10, Profit: 1, Region: "", State: "", City: "", Year: 2023, Month: 2, Segment: "", Category: "", SubCategory: ""},
	}
}
