package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopadmin/backoffice/internal/customer"
	"github.com/shopadmin/backoffice/internal/dashboard"
	"github.com/shopadmin/backoffice/internal/handler"
	"github.com/shopadmin/backoffice/internal/order"
	"github.com/shopadmin/backoffice/internal/product"
)

func NewRouter(db *pgxpool.Pool) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	orderHandler := handler.NewOrderHandler(order.NewService(order.NewRepository(db)))
	productHandler := handler.NewProductHandler(product.NewService(product.NewRepository(db)))
	customerHandler := handler.NewCustomerHandler(customer.NewService(customer.NewRepository(db)))
	dashboardHandler := handler.NewDashboardHandler(dashboard.NewService(dashboard.NewRepository(db)))

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", orderHandler.PlaceOrder)
		r.Get("/", orderHandler.ListOrders)
		r.Get("/{id}", orderHandler.GetOrderByID)
		r.Patch("/{id}/status", orderHandler.UpdateStatus)
		r.Post("/{id}/recalculate", orderHandler.RecalculateTotals)
		r.Delete("/{id}", orderHandler.DeleteOrder)
	})

	r.Route("/products", func(r chi.Router) {
		r.Post("/", productHandler.CreateProduct)
		r.Get("/", productHandler.ListProducts)
		r.Get("/{id}", productHandler.GetProductByID)
		r.Put("/{id}", productHandler.UpdateProduct)
		r.Delete("/{id}", productHandler.DeleteProduct)
	})

	r.Route("/customers", func(r chi.Router) {
		r.Post("/", customerHandler.CreateCustomer)
		r.Get("/", customerHandler.ListCustomers)
		r.Get("/{id}", customerHandler.GetCustomerByID)
		r.Put("/{id}", customerHandler.UpdateCustomer)
		r.Delete("/{id}", customerHandler.DeleteCustomer)
	})

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/stats", dashboardHandler.Stats)
		r.Get("/sales-chart", dashboardHandler.SalesChart)
		r.Get("/top-products", dashboardHandler.TopProducts)
		r.Get("/recent-orders", dashboardHandler.RecentOrders)
	})

	return r
}
