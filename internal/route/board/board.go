// Package board serves the read-only wallet dashboard pages.
package board

import (
	"net/http"
	"sort"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/dense-analysis/coinvault/internal/database"
	"github.com/dense-analysis/coinvault/internal/history"
	"github.com/dense-analysis/coinvault/internal/model"
	"github.com/dense-analysis/coinvault/internal/route/util"
	"github.com/dense-analysis/coinvault/internal/session"
	"github.com/dense-analysis/coinvault/internal/storage"
	"github.com/dense-analysis/coinvault/internal/template"
)

// historyPageSize caps how many archived price points one page shows.
const historyPageSize = 50

// TrackedPosition is a Position with its current value attached.
type TrackedPosition struct {
	model.Position
	Value  decimal.Decimal
	Profit decimal.Decimal
}

type PortfolioPageData struct {
	User          *model.User
	Positions     []TrackedPosition
	Sales         []model.Sale
	TotalValue    decimal.Decimal
	OverallProfit decimal.Decimal
}

type OfferingsPageData struct {
	User    *model.User
	Catalog *model.Catalog
}

type HistoryPageData struct {
	User    *model.User
	AssetID string
	Quotes  []history.HistoricQuote
}

func loadUser(
	repository *storage.PostgresRepository,
	writer http.ResponseWriter,
	request *http.Request,
) *model.User {
	user, err := session.LoadUserFromSession(repository, request)

	if err != nil {
		util.RespondInternalServerError(writer, err)

		return nil
	}

	if user == nil {
		http.Redirect(writer, request, "/login", http.StatusFound)

		return nil
	}

	return user
}

func quoteMap(snapshot *model.Catalog) map[string]model.Quote {
	quotes := map[string]model.Quote{}

	if snapshot != nil {
		for _, quote := range snapshot.Quotes {
			quotes[quote.AssetID] = quote
		}
	}

	return quotes
}

// HandlePortfolio shows one user's money, open positions and past sales.
func HandlePortfolio(repository *storage.PostgresRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		user := loadUser(repository, writer, request)

		if user == nil {
			return
		}

		snapshot, err := repository.LoadCatalog()

		if err != nil {
			util.RespondInternalServerError(writer, err)

			return
		}

		quotes := quoteMap(snapshot)
		data := PortfolioPageData{
			User:          user,
			Sales:         user.Sales,
			TotalValue:    user.Money,
			OverallProfit: decimal.Zero,
		}

		for _, position := range user.Positions {
			tracked := TrackedPosition{Position: position}

			// Positions without a current quote are shown unvalued.
			if quote, ok := quotes[position.AssetID]; ok {
				tracked.Value = quote.Price.Mul(position.Amount)
				tracked.Profit = tracked.Value.Sub(position.Purchased)
				data.TotalValue = data.TotalValue.Add(tracked.Value)
				data.OverallProfit = data.OverallProfit.Add(tracked.Profit)
			}

			data.Positions = append(data.Positions, tracked)
		}

		for _, sale := range user.Sales {
			data.OverallProfit = data.OverallProfit.Add(sale.Profit)
		}

		sort.Slice(data.Positions, func(i, j int) bool {
			return data.Positions[i].AssetID < data.Positions[j].AssetID
		})

		template.Render(template.Portfolio, writer, data)
	}
}

// HandleOfferings shows the saved quote catalog.
func HandleOfferings(repository *storage.PostgresRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		user := loadUser(repository, writer, request)

		if user == nil {
			return
		}

		snapshot, err := repository.LoadCatalog()

		if err != nil {
			util.RespondInternalServerError(writer, err)

			return
		}

		if snapshot == nil {
			snapshot = &model.Catalog{}
		}

		sort.Slice(snapshot.Quotes, func(i, j int) bool {
			return snapshot.Quotes[i].AssetID < snapshot.Quotes[j].AssetID
		})

		template.Render(template.Offerings, writer, OfferingsPageData{
			User:    user,
			Catalog: snapshot,
		})
	}
}

func loadHistory(conn database.Queryable, assetID string) ([]history.HistoricQuote, error) {
	var quotes []history.HistoricQuote

	if err := history.RecentQuotes(conn, assetID, historyPageSize, &quotes); err != nil {
		return nil, err
	}

	return quotes, nil
}

// HandleHistory shows the archived prices for one asset, newest first.
func HandleHistory(repository *storage.PostgresRepository, conn database.Queryable) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		user := loadUser(repository, writer, request)

		if user == nil {
			return
		}

		assetID := mux.Vars(request)["asset"]
		quotes, err := loadHistory(conn, assetID)

		if err != nil {
			util.RespondInternalServerError(writer, err)

			return
		}

		template.Render(template.History, writer, HistoryPageData{
			User:    user,
			AssetID: assetID,
			Quotes:  quotes,
		})
	}
}
