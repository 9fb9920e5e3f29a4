package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dense-analysis/skinwarp/internal/model"
)

// Logical route names, also used as query cache key prefixes.
const (
	RouteItems         = "items"
	RouteAuth          = "auth"
	RouteUsers         = "users"
	RouteSubscriptions = "subscriptions"
	RouteTransactions  = "transactions"
	RouteListings      = "listings"
)

// ItemsQuery filters and paginates the item list.
type ItemsQuery struct {
	Page     int
	PageSize int
	Category string
	Exterior string
	Skin     string
	Name     string
}

func (query ItemsQuery) values() url.Values {
	values := url.Values{}

	if query.Page > 0 {
		values.Set("page", strconv.Itoa(query.Page))
	}

	if query.PageSize > 0 {
		values.Set("pageSize", strconv.Itoa(query.PageSize))
	}

	for key, value := range map[string]string{
		"category": query.Category,
		"exterior": query.Exterior,
		"skin":     query.Skin,
		"name":     query.Name,
	} {
		if value != "" {
			values.Set(key, value)
		}
	}

	return values
}

// ItemsPage is one page of transformed items.
type ItemsPage struct {
	Paging
	Items []model.Item
}

// Items lists items matching the query.
func (client *Client) Items(ctx context.Context, query ItemsQuery) (*ItemsPage, error) {
	var data struct {
		Paging
		Items []model.ItemDTO `json:"items"`
	}

	err := client.fetch(ctx, RouteItems, Params{Query: query.values()}, &data)

	if err != nil {
		return nil, err
	}

	items, err := model.ItemsFromDTO(client.converter, data.Items)

	if err != nil {
		return nil, err
	}

	return &ItemsPage{Paging: data.Paging, Items: items}, nil
}

// Item fetches a single item by ID.
func (client *Client) Item(ctx context.Context, itemID string) (*model.Item, error) {
	var data struct {
		Item model.ItemDTO `json:"item"`
	}

	err := client.fetch(ctx, RouteItems+"/"+url.PathEscape(itemID), Params{}, &data)

	if err != nil {
		return nil, err
	}

	item, err := model.ItemFromDTO(client.converter, &data.Item)

	if err != nil {
		return nil, err
	}

	return &item, nil
}

// ItemFilters holds the filter values available on the item list.
type ItemFilters struct {
	Category []string `json:"category"`
	Skin     []string `json:"skin"`
	Exterior []string `json:"exterior"`
	Name     []string `json:"name"`
}

// Filters fetches the filter values for the item list.
func (client *Client) Filters(ctx context.Context) (*ItemFilters, error) {
	var data struct {
		Filters ItemFilters `json:"filters"`
	}

	if err := client.fetch(ctx, RouteItems+"/filters", Params{}, &data); err != nil {
		return nil, err
	}

	return &data.Filters, nil
}

// CurrentUser fetches the user the session token belongs to. It is the
// auth check used to restore a session at startup.
func (client *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var data struct {
		User model.User `json:"user"`
	}

	if err := client.fetch(ctx, RouteAuth, Params{}, &data); err != nil {
		return nil, err
	}

	return &data.User, nil
}

// Session is a logged-in user and their bearer token.
type Session struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// Login exchanges credentials for a session.
func (client *Client) Login(ctx context.Context, email string, password string) (*Session, error) {
	var data Session

	err := client.fetch(ctx, RouteAuth, Params{
		Method: http.MethodPost,
		Body: map[string]string{
			"email":    email,
			"password": password,
		},
	}, &data)

	if err != nil {
		return nil, err
	}

	return &data, nil
}

// Signup registers a new user and returns their first session.
func (client *Client) Signup(
	ctx context.Context,
	username string,
	email string,
	password string,
) (*Session, error) {
	var data Session

	err := client.fetch(ctx, RouteUsers, Params{
		Method: http.MethodPost,
		Body: map[string]string{
			"username": username,
			"email":    email,
			"password": password,
		},
	}, &data)

	if err != nil {
		return nil, err
	}

	return &data, nil
}

// Subscriptions lists the current user's price alert subscriptions.
func (client *Client) Subscriptions(ctx context.Context) ([]model.Subscription, error) {
	var data struct {
		Subscriptions []model.Subscription `json:"subscriptions"`
	}

	if err := client.fetch(ctx, RouteSubscriptions, Params{}, &data); err != nil {
		return nil, err
	}

	return data.Subscriptions, nil
}

// CreateSubscription adds a price alert subscription.
func (client *Client) CreateSubscription(
	ctx context.Context,
	subscription model.Subscription,
) (*model.Subscription, error) {
	var data struct {
		Subscription model.Subscription `json:"subscription"`
	}

	err := client.fetch(ctx, RouteSubscriptions, Params{
		Method: http.MethodPost,
		Body:   subscription,
	}, &data)

	if err != nil {
		return nil, err
	}

	return &data.Subscription, nil
}

// UpdateSubscription replaces a subscription's settings.
func (client *Client) UpdateSubscription(
	ctx context.Context,
	subscription model.Subscription,
) (*model.Subscription, error) {
	var data struct {
		Subscription model.Subscription `json:"subscription"`
	}

	err := client.fetch(
		ctx,
		RouteSubscriptions+"/"+url.PathEscape(subscription.ID),
		Params{Method: http.MethodPut, Body: subscription},
		&data,
	)

	if err != nil {
		return nil, err
	}

	return &data.Subscription, nil
}

// DeleteSubscription removes a subscription.
func (client *Client) DeleteSubscription(ctx context.Context, subscriptionID string) error {
	return client.fetch(
		ctx,
		RouteSubscriptions+"/"+url.PathEscape(subscriptionID),
		Params{Method: http.MethodDelete},
		nil,
	)
}

// TransactionsByDays fetches transactions for an item name within a day
// window.
func (client *Client) TransactionsByDays(
	ctx context.Context,
	name string,
	days int,
) ([]model.Transaction, error) {
	var data struct {
		Transactions []model.Transaction `json:"transactions"`
	}

	values := url.Values{}
	values.Set("name", name)
	values.Set("days", strconv.Itoa(days))

	if err := client.fetch(ctx, RouteTransactions, Params{Query: values}, &data); err != nil {
		return nil, err
	}

	return data.Transactions, nil
}

// TransactionsPage fetches one page of transactions for an item name.
func (client *Client) TransactionsPage(
	ctx context.Context,
	name string,
	page int,
	pageSize int,
) ([]model.Transaction, error) {
	var data struct {
		Transactions []model.Transaction `json:"transactions"`
	}

	values := url.Values{}
	values.Set("name", name)
	values.Set("page", strconv.Itoa(page))
	values.Set("pageSize", strconv.Itoa(pageSize))

	if err := client.fetch(ctx, RouteTransactions, Params{Query: values}, &data); err != nil {
		return nil, err
	}

	return data.Transactions, nil
}

// ListingsPage is one page of marketplace listings.
type ListingsPage struct {
	Paging
	Listings []model.Listing
}

// Listings fetches one page of active listings for an item name.
func (client *Client) Listings(
	ctx context.Context,
	name string,
	page int,
	pageSize int,
) (*ListingsPage, error) {
	var data struct {
		Paging
		Listings []model.Listing `json:"listings"`
	}

	values := url.Values{}
	values.Set("name", name)
	values.Set("page", strconv.Itoa(page))
	values.Set("pageSize", strconv.Itoa(pageSize))

	if err := client.fetch(ctx, RouteListings, Params{Query: values}, &data); err != nil {
		return nil, err
	}

	return &ListingsPage{Paging: data.Paging, Listings: data.Listings}, nil
}
