package handler

import (
	"net/http"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"github.com/segyhp/lending-registry/internal/domain"
	"github.com/segyhp/lending-registry/internal/service"
	"github.com/segyhp/lending-registry/pkg/response"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type LendingHandler struct {
	service   *service.LendingService
	validator *validator.Validate
}

func NewLendingHandler(service *service.LendingService) *LendingHandler {
	v := validator.New()
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	return &LendingHandler{
		service:   service,
		validator: v,
	}
}

// decimalValue lets numeric tags like gte=0 apply to decimal fields
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// RegisterRoutes mounts every lending endpoint on router
func (h *LendingHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/genres", h.ListGenres).Methods(http.MethodGet)
	api.HandleFunc("/genres", h.AddGenre).Methods(http.MethodPost)
	api.HandleFunc("/genres/{name}", h.RenameGenre).Methods(http.MethodPut)
	api.HandleFunc("/genres/{name}", h.RemoveGenre).Methods(http.MethodDelete)

	api.HandleFunc("/locations", h.ListLocations).Methods(http.MethodGet)
	api.HandleFunc("/locations", h.AddLocation).Methods(http.MethodPost)
	api.HandleFunc("/locations/{room}/{shelf}", h.MoveLocation).Methods(http.MethodPut)
	api.HandleFunc("/locations/{room}/{shelf}", h.RemoveLocation).Methods(http.MethodDelete)

	api.HandleFunc("/categories", h.ListCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories", h.AddCategory).Methods(http.MethodPost)
	api.HandleFunc("/categories/{name}", h.UpdateCategory).Methods(http.MethodPut)
	api.HandleFunc("/categories/{name}", h.RemoveCategory).Methods(http.MethodDelete)

	api.HandleFunc("/items", h.ListItems).Methods(http.MethodGet)
	api.HandleFunc("/items", h.AddItem).Methods(http.MethodPost)
	api.HandleFunc("/items/{code}", h.GetItem).Methods(http.MethodGet)
	api.HandleFunc("/items/{code}", h.RemoveItem).Methods(http.MethodDelete)
	api.HandleFunc("/items/{code}/lendable", h.MakeLendable).Methods(http.MethodPost)
	api.HandleFunc("/items/{code}/consultable", h.MakeConsultableOnly).Methods(http.MethodPost)

	api.HandleFunc("/borrowers", h.ListBorrowers).Methods(http.MethodGet)
	api.HandleFunc("/borrowers", h.RegisterBorrower).Methods(http.MethodPost)
	api.HandleFunc("/borrowers/{last}/{first}", h.GetBorrower).Methods(http.MethodGet)
	api.HandleFunc("/borrowers/{last}/{first}", h.UpdateBorrower).Methods(http.MethodPut)
	api.HandleFunc("/borrowers/{last}/{first}", h.UnregisterBorrower).Methods(http.MethodDelete)
	api.HandleFunc("/borrowers/{last}/{first}/category", h.ChangeCategory).Methods(http.MethodPut)
	api.HandleFunc("/borrowers/{last}/{first}/discount-code", h.ChangeDiscountCode).Methods(http.MethodPut)

	api.HandleFunc("/loans", h.ListLoans).Methods(http.MethodGet)
	api.HandleFunc("/loans", h.Borrow).Methods(http.MethodPost)
	api.HandleFunc("/loans/return", h.ReturnItem).Methods(http.MethodPost)

	api.HandleFunc("/statistics", h.Statistics).Methods(http.MethodGet)
	api.HandleFunc("/sweep", h.DailySweep).Methods(http.MethodPost)
}

// decode reads the JSON body into req and validates it
func (h *LendingHandler) decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return false
	}
	return true
}

func borrowerKeyFrom(r *http.Request) domain.BorrowerKey {
	vars := mux.Vars(r)
	return domain.BorrowerKey{LastName: vars["last"], FirstName: vars["first"]}
}

func locationKeyFrom(r *http.Request) domain.LocationKey {
	vars := mux.Vars(r)
	return domain.LocationKey{Room: vars["room"], Shelf: vars["shelf"]}
}

// Genres

func (h *LendingHandler) ListGenres(w http.ResponseWriter, r *http.Request) {
	var genres []domain.GenreState
	err := h.service.View(r.Context(), func(reg *service.LendingRegistry) error {
		genres = make([]domain.GenreState, 0, reg.GenreCount())
		for _, g := range reg.Genres() {
			genres = append(genres, g.State())
		}
		return nil
	})
	if err != nil {
		response.FromError(w, "Failed to list genres", err)
		return
	}
	response.Success(w, genres)
}

func (h *LendingHandler) AddGenre(w http.ResponseWriter, r *http.Request) {
	var req domain.GenreRequest
	if !h.decode(w, r, &req) {
		return
	}

	var genre domain.GenreState
	err := h.service.Update(r.Context(), func(reg *service.LendingRegistry) error {
		g, err := reg.AddGenre(req.Name)
		if err != nil {
			return err
		}
		genre = g.State()
		return nil
	})
	if err != nil {
		response.FromError(w, "Failed to add genre", err)
		return
	}
	response.Created(w, genre)
}

func (h *LendingHandler) RenameGenre(w http.ResponseWriter, r *http.Request) {
	var req domain.GenreRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.service.Update(r.Context(), func(reg *service.LendingRegistry) error {
		return reg.RenameGenre(mux.Vars(r)["name"], req.Name)
	})
	if err != nil {
		response.FromError(w, "Failed to rename genre", err)
		return
	}
	response.NoContent(w)
}

func (h *LendingHandler) RemoveGenre(w http.ResponseWriter, r *http.Request) {
	err := h.service.Update(r.Context(), func(reg *service.LendingRegistry) error {
		return reg.RemoveGenre(mux.Vars(r)["name"])
	})
	if err != nil {
		response.FromError(w, "Failed to remove genre", err)
		return
	}
	response.NoContent(w)
}

// Locations

func (h *LendingHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	var locations []domain.LocationKey
	err := h.service.View(r.Context(), func(reg *service.LendingRegistry) error {
		locations = make([]domain.LocationKey, 0, reg.LocationCount())
		for _, loc := range reg.Locations() {
			locations = append(locations, loc.Key())
		}
		return nil
	})
	if err != nil {
		response.FromError(w, "Failed to list locations", err)
		return
	}
	response.Success(w, locations)
}

func (h *LendingHandler) AddLocation(w http.ResponseWriter, r *http.Request) {
	var req domain.LocationRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.service.Update(r.Context(), func(reg *service.LendingRegistry) error {
		_, err := reg.AddLocation(req.Room, req.Shelf)
		return err
	})
	if err != nil {
		response.FromError(w, "Failed to add location", err)
		return
	}
	response.Created(w, domain.LocationKey{Room: req.Room, Shelf: req.Shelf})
}

func (h *LendingHandler) MoveLocation(w http.ResponseWriter, r *http.Request) {
	var req domain.LocationRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.service.Update(r.Context(), func(reg *service.LendingRegistry) error {
		return reg.MoveLocation(locationKeyFrom(r), req.Room, req.Shelf)
	})
	if err != nil {
		response.FromError(w, "Failed to move location", err)
		return
	}
	response.NoContent(w)
}

func (h *LendingHandler) RemoveLocation(w http.ResponseWriter, r *http.Request) {
	err := h.service.Update(r.Context(), func(reg *service.LendingRegistry) error {
		return reg.RemoveLocation(locationKeyFrom(r))
	})
	if err != nil {
		response.FromError(w, "Failed to remove location", err)
		return
	}
	response.NoContent(w)
}

// Categories

func (h *LendingHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	var categories []domain.CategoryState
	err := h.service.View(r.Context(), func(reg *service.LendingRegistry) error {
		categories = make([]domain.CategoryState, 0, reg.CategoryCount())
		for _, c := range reg.Categories() {
			categories = append(categories, c.State())
		}
		return nil
	})
	if err != nil {
		response.FromError(w, "Failed to list categories", err)
		return
	}
	response.Success(w, categories)
}

func (h *LendingHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var req domain.CategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	var category domain.CategoryState
	err := h.service.Update(r.Context(), func(reg *service.LendingRegistry) error {
		c, err := reg.AddCategory(req.Name, req.Policy())
		if err != nil {
			return err
		}
		category = c.State()
		return nil
	})
	if err != nil {
		response.FromError(w, "Failed to add category", err)
		return
	}
	response.Created(w, category)
}

func (h *LendingHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req domain.CategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.service.Update(r.Context(), func(reg *service.LendingRegistry) error {
		return reg.UpdateCategory(mux.Vars(r)["name"], req.Name, req.Policy())
	})
	if err != nil {
		response.FromError(w, "Failed to update category", err)
		return
	}
	response.NoContent(w)
}

func (h *LendingHandler) RemoveCategory(w http.ResponseWriter, r *http.Request) {
	err := h.service.Update(r.Context(), func(reg *service.LendingRegistry) error {
		return reg.RemoveCategory(mux.Vars(r)["name"])
	})
	if err != nil {
		response.FromError(w, "Failed to remove category", err)
		return
	}
	response.NoContent(w)
}

// Items

func (h *LendingHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	var items []domain.ItemState
	err := h.service.View(r.Context(), func(reg *service.LendingRegistry) error {
		items = make([]domain.ItemState, 0, reg.ItemCount())
		for _, item := range reg.Items() {
			items = append(items, item.State())
		}
		return nil
	})
	if err != nil {
		response.FromError(w, "Failed to list items", err)
		return
	}
	response.Success(w, items)
}

func (h *LendingHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	details, err := domain.DetailsFor(req.Kind, req.Pages, req.Classification, req.Length, req.LegalNotice)
	if err != nil {
		response.FromError(w, "Invalid item kind", err)
		return
	}

	var item domain.ItemState
	err = h.service.Update(r.Context(), func(reg *service.LendingRegistry) error {
		created, err := reg.CreateItem(req.Info(), req.Genre, domain.LocationKey{Room: req.Room, Shelf: req.Shelf},
			details, req.Lendable)
		if err != nil {
			return err
		}
		item = created.State()
		return nil
	})
	if err != nil {
		response.FromError(w, "Failed to add item", err)
		return
	}
	response.Created(w, item)
}

func (h *LendingHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	var item domain.ItemState
	err := h.service.View(r.Context(), func(reg *service.LendingRegistry) error {
		found, err := reg.Item(mux.Vars(r)["code"])
		if err != nil {
			return err
		}
		item = found.State()
		return nil
	})
	if err != nil {
		response.FromError(w, "Failed to get item", err)
		return
	}
	response.Success(w, item)
}

func (h *LendingHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	err := h.service.Update(r.Context(), func(reg *service.LendingRegistry) error {
		return reg.RemoveItem(mux.Vars(r)["code"])
	})
	if err != nil {
		response.FromError(w, "Failed to remove item", err)
		return
	}
	response.NoContent(w)
}

func (h *LendingHandler) MakeLendable(w http.ResponseWriter, r *http.Request) {
	err := h.service.Update(r.Context(), func(reg *service.LendingRegistry) error {
		return reg.MakeLendable(mux.Vars(r)["code"])
	})
	if err != nil {
		response.FromError(w, "Failed to make item lendable", err)
		return
	}
	response.NoContent(w)
}

func (h *LendingHandler) MakeConsultableOnly(w http.ResponseWriter, r *http.Request) {
	err := h.service.Update(r.Context(), func(reg *service.LendingRegistry) error {
		return reg.MakeConsultableOnly(mux.Vars(r)["code"])
	})
	if err != nil {
		response.FromError(w, "Failed to make item consultable only", err)
		return
	}
	response.NoContent(w)
}

// Borrowers

func (h *LendingHandler) ListBorrowers(w http.ResponseWriter, r *http.Request) {
	var borrowers []domain.BorrowerState
	err := h.service.View(r.Context(), func(reg *service.LendingRegistry) error {
		borrowers = make([]domain.BorrowerState, 0, reg.BorrowerCount())
		for _, b := range reg.Borrowers() {
			borrowers = append(borrowers, b.State())
		}
		return nil
	})
	if err != nil {
		response.FromError(w, "Failed to list borrowers", err)
		return
	}
	response.Success(w, borrowers)
}

func (h *LendingHandler) RegisterBorrower(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterBorrowerRequest
	if !h.decode(w, r, &req) {
		return
	}

	var resp domain.RegisterBorrowerResponse
	err := h.service.Update(r.Context(), func(reg *service.LendingRegistry) error {
		b, fee, err := reg.RegisterBorrower(req.Key(), req.Address, req.Category, req.DiscountCode)
		if err != nil {
			return err
		}
		resp = domain.RegisterBorrowerResponse{Borrower: b.State(), AnnualFee: fee}
		return nil
	})
	if err != nil {
		response.FromError(w, "Failed to register borrower", err)
		return
	}
	response.Created(w, resp)
}

func (h *LendingHandler) GetBorrower(w http.ResponseWriter, r *http.Request) {
	var borrower domain.BorrowerState
	err := h.service.View(r.Context(), func(reg *service.LendingRegistry) error {
		b, err := reg.Borrower(borrowerKeyFrom(r))
		if err != nil {
			return err
		}
		borrower = b.State()
		return nil
	})
	if err != nil {
		response.FromError(w, "Failed to get borrower", err)
		return
	}
	response.Success(w, borrower)
}

func (h *LendingHandler) UpdateBorrower(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateBorrowerRequest
	if !h.decode(w, r, &req) {
		return
	}

	newKey := domain.BorrowerKey{LastName: req.LastName, FirstName: req.FirstName}
	err := h.service.Update(r.Context(), func(reg *service.LendingRegistry) error {
		return reg.UpdateBorrower(borrowerKeyFrom(r), newKey, req.Address)
	})
	if err != nil {
		response.FromError(w, "Failed to update borrower", err)
		return
	}
	response.NoContent(w)
}

func (h *LendingHandler) UnregisterBorrower(w http.ResponseWriter, r *http.Request) {
	err := h.service.Update(r.Context(), func(reg *service.LendingRegistry) error {
		return reg.UnregisterBorrower(borrowerKeyFrom(r))
	})
	if err != nil {
		response.FromError(w, "Failed to unregister borrower", err)
		return
	}
	response.NoContent(w)
}

func (h *LendingHandler) ChangeCategory(w http.ResponseWriter, r *http.Request) {
	var req domain.ChangeCategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.service.Update(r.Context(), func(reg *service.LendingRegistry) error {
		return reg.ChangeBorrowerCategory(borrowerKeyFrom(r), req.Category, req.DiscountCode)
	})
	if err != nil {
		response.FromError(w, "Failed to change borrower category", err)
		return
	}
	response.NoContent(w)
}

func (h *LendingHandler) ChangeDiscountCode(w http.ResponseWriter, r *http.Request) {
	var req domain.DiscountCodeRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.service.Update(r.Context(), func(reg *service.LendingRegistry) error {
		return reg.ChangeDiscountCode(borrowerKeyFrom(r), req.DiscountCode)
	})
	if err != nil {
		response.FromError(w, "Failed to change discount code", err)
		return
	}
	response.NoContent(w)
}

// Loans

func (h *LendingHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	var loans []domain.LoanState
	err := h.service.View(r.Context(), func(reg *service.LendingRegistry) error {
		loans = make([]domain.LoanState, 0, reg.LoanCount())
		for _, loan := range reg.Loans() {
			loans = append(loans, loan.State())
		}
		return nil
	})
	if err != nil {
		response.FromError(w, "Failed to list loans", err)
		return
	}
	response.Success(w, loans)
}

func (h *LendingHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	var req domain.LoanRequest
	if !h.decode(w, r, &req) {
		return
	}

	var loan domain.LoanState
	err := h.service.Update(r.Context(), func(reg *service.LendingRegistry) error {
		created, err := reg.Borrow(req.Key(), req.ItemCode)
		if err != nil {
			return err
		}
		loan = created.State()
		return nil
	})
	if err != nil {
		response.FromError(w, "Failed to borrow item", err)
		return
	}
	response.Created(w, loan)
}

func (h *LendingHandler) ReturnItem(w http.ResponseWriter, r *http.Request) {
	var req domain.LoanRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.service.Update(r.Context(), func(reg *service.LendingRegistry) error {
		return reg.ReturnItem(req.Key(), req.ItemCode)
	})
	if err != nil {
		response.FromError(w, "Failed to return item", err)
		return
	}
	response.NoContent(w)
}

func (h *LendingHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	var stats service.Statistics
	err := h.service.View(r.Context(), func(reg *service.LendingRegistry) error {
		stats = reg.Statistics()
		return nil
	})
	if err != nil {
		response.FromError(w, "Failed to read statistics", err)
		return
	}
	response.Success(w, stats)
}

func (h *LendingHandler) DailySweep(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.RunDailySweep(r.Context())
	if err != nil {
		response.FromError(w, "Daily sweep failed", err)
		return
	}
	response.Success(w, report)
}
