// A local marketplace API stub serving the envelope contract from
// in-memory fixtures, for developing against without the real backend.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/dense-analysis/skinwarp/internal/api"
	"github.com/dense-analysis/skinwarp/internal/env"
	"github.com/dense-analysis/skinwarp/internal/model"
	"github.com/dense-analysis/skinwarp/pkg/lax"
)

type stubUser struct {
	model.User
	passwordHash []byte
}

// stubServer holds all fixture data behind one lock.
type stubServer struct {
	mutex         sync.Mutex
	users         map[string]*stubUser
	tokens        map[string]string
	items         []model.ItemDTO
	subscriptions []model.Subscription
	transactions  []model.Transaction
	listings      []model.Listing
	nextID        int
}

func newStubServer() *stubServer {
	server := &stubServer{
		users:         map[string]*stubUser{},
		tokens:        map[string]string{},
		items:         fixtureItems(),
		transactions:  fixtureTransactions(),
		listings:      fixtureListings(),
		subscriptions: []model.Subscription{},
		nextID:        1,
	}

	// A known account, so logging in works out of the box.
	server.addUser("demo", "demo@example.com", "hunter2")

	return server
}

func (server *stubServer) generateID(prefix string) string {
	id := fmt.Sprintf("%s-%d", prefix, server.nextID)
	server.nextID++

	return id
}

func randomToken() string {
	bytes := make([]byte, 20)

	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}

	return hex.EncodeToString(bytes)
}

func (server *stubServer) addUser(username, email, password string) *stubUser {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), 14)

	if err != nil {
		panic(err)
	}

	user := &stubUser{
		User: model.User{
			ID:              server.generateID("user"),
			Username:        username,
			Email:           email,
			Role:            "user",
			SubscriptionIDs: []string{},
			FavItemIDs:      []string{},
			FavListingIDs:   []string{},
		},
		passwordHash: passwordHash,
	}
	server.users[email] = user

	return user
}

// authenticate resolves the bearer token into a user, or returns an
// error envelope for the caller to pass back.
func (server *stubServer) authenticate(request *lax.Request) (*stubUser, *lax.Response) {
	token := request.BearerToken()

	if token == "" {
		return nil, lax.MakeErrorResponse(
			api.CodeInvalidAuthHeader,
			"missing authorization header",
		)
	}

	email, found := server.tokens[token]

	if !found {
		return nil, lax.MakeErrorResponse(
			api.CodeTokenCheckFailed,
			"invalid token",
		)
	}

	return server.users[email], nil
}

// paginate slices [start, end) bounds for a 1-indexed page out of total.
func paginate(request *lax.Request, defaultPageSize, total int) (api.Paging, int, int) {
	page, _ := strconv.Atoi(request.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(request.URL.Query().Get("pageSize"))

	if page < 1 {
		page = 1
	}

	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	start := (page - 1) * pageSize

	if start > total {
		start = total
	}

	end := start + pageSize

	if end > total {
		end = total
	}

	return api.Paging{Total: total, Page: page, PageSize: pageSize}, start, end
}

func (server *stubServer) handleItemList(request *lax.Request) interface{} {
	server.mutex.Lock()
	defer server.mutex.Unlock()

	query := request.URL.Query()
	matched := []model.ItemDTO{}

	for _, item := range server.items {
		if value := query.Get("category"); value != "" && item.Category != value {
			continue
		}

		if value := query.Get("exterior"); value != "" && item.Exterior != value {
			continue
		}

		if value := query.Get("skin"); value != "" && item.Skin != value {
			continue
		}

		if value := query.Get("name"); value != "" &&
			!strings.Contains(strings.ToLower(item.Name), strings.ToLower(value)) {
			continue
		}

		matched = append(matched, item)
	}

	paging, start, end := paginate(request, 20, len(matched))

	return map[string]interface{}{
		"total":    paging.Total,
		"page":     paging.Page,
		"pageSize": paging.PageSize,
		"items":    matched[start:end],
	}
}

func (server *stubServer) handleItem(request *lax.Request) interface{} {
	server.mutex.Lock()
	defer server.mutex.Unlock()

	itemID := mux.Vars(request.Request)["id"]

	for _, item := range server.items {
		if item.ID == itemID {
			return map[string]interface{}{"item": item}
		}
	}

	return lax.MakeErrorResponse(lax.CodeError, "item not found")
}

// distinct collects sorted unique non-empty values.
func distinct(values []string) []string {
	seen := map[string]bool{}
	result := []string{}

	for _, value := range values {
		if value != "" && !seen[value] {
			seen[value] = true
			result = append(result, value)
		}
	}

	sort.Strings(result)

	return result
}

func (server *stubServer) handleItemFilters(request *lax.Request) interface{} {
	server.mutex.Lock()
	defer server.mutex.Unlock()

	categories := []string{}
	skins := []string{}
	exteriors := []string{}
	names := []string{}

	for _, item := range server.items {
		categories = append(categories, item.Category)
		skins = append(skins, item.Skin)
		exteriors = append(exteriors, item.Exterior)
		names = append(names, item.Name)
	}

	return map[string]interface{}{
		"filters": api.ItemFilters{
			Category: distinct(categories),
			Skin:     distinct(skins),
			Exterior: distinct(exteriors),
			Name:     distinct(names),
		},
	}
}

func (server *stubServer) handleCurrentUser(request *lax.Request) interface{} {
	server.mutex.Lock()
	defer server.mutex.Unlock()

	user, errResponse := server.authenticate(request)

	if errResponse != nil {
		return errResponse
	}

	return map[string]interface{}{"user": user.User}
}

func (server *stubServer) handleLogin(request *lax.Request) interface{} {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := request.JSON(&body); err != nil {
		return lax.MakeBadRequestResponse(err)
	}

	server.mutex.Lock()
	defer server.mutex.Unlock()

	user, found := server.users[body.Email]

	if !found {
		return lax.MakeErrorResponse(api.CodeUserNotExist, "user does not exist")
	}

	err := bcrypt.CompareHashAndPassword(user.passwordHash, []byte(body.Password))

	if err != nil {
		return lax.MakeErrorResponse(api.CodeUserWrongPassword, "wrong password")
	}

	token := randomToken()
	server.tokens[token] = user.Email

	return map[string]interface{}{"user": user.User, "token": token}
}

func (server *stubServer) handleSignup(request *lax.Request) interface{} {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := request.JSON(&body); err != nil {
		return lax.MakeBadRequestResponse(err)
	}

	if body.Username == "" || body.Email == "" || body.Password == "" {
		return lax.MakeBadRequestResponse("username, email, and password are required")
	}

	server.mutex.Lock()
	defer server.mutex.Unlock()

	if _, found := server.users[body.Email]; found {
		return lax.MakeBadRequestResponse("email is already registered")
	}

	user := server.addUser(body.Username, body.Email, body.Password)
	token := randomToken()
	server.tokens[token] = user.Email

	return map[string]interface{}{"user": user.User, "token": token}
}

func (server *stubServer) handleSubscriptionList(request *lax.Request) interface{} {
	server.mutex.Lock()
	defer server.mutex.Unlock()

	user, errResponse := server.authenticate(request)

	if errResponse != nil {
		return errResponse
	}

	subscriptions := []model.Subscription{}

	for _, subscription := range server.subscriptions {
		if subscription.OwnerID == user.ID {
			subscriptions = append(subscriptions, subscription)
		}
	}

	return map[string]interface{}{"subscriptions": subscriptions}
}

func (server *stubServer) handleCreateSubscription(request *lax.Request) interface{} {
	var subscription model.Subscription

	if err := request.JSON(&subscription); err != nil {
		return lax.MakeBadRequestResponse(err)
	}

	if subscription.Name == "" {
		return lax.MakeBadRequestResponse("name is required")
	}

	server.mutex.Lock()
	defer server.mutex.Unlock()

	user, errResponse := server.authenticate(request)

	if errResponse != nil {
		return errResponse
	}

	subscription.ID = server.generateID("subscription")
	subscription.OwnerID = user.ID
	server.subscriptions = append(server.subscriptions, subscription)
	user.SubscriptionIDs = append(user.SubscriptionIDs, subscription.ID)

	return map[string]interface{}{"subscription": subscription}
}

func (server *stubServer) handleUpdateSubscription(request *lax.Request) interface{} {
	var updated model.Subscription

	if err := request.JSON(&updated); err != nil {
		return lax.MakeBadRequestResponse(err)
	}

	server.mutex.Lock()
	defer server.mutex.Unlock()

	user, errResponse := server.authenticate(request)

	if errResponse != nil {
		return errResponse
	}

	subscriptionID := mux.Vars(request.Request)["id"]

	for i := range server.subscriptions {
		subscription := &server.subscriptions[i]

		if subscription.ID == subscriptionID && subscription.OwnerID == user.ID {
			updated.ID = subscription.ID
			updated.OwnerID = user.ID
			*subscription = updated

			return map[string]interface{}{"subscription": updated}
		}
	}

	return lax.MakeErrorResponse(lax.CodeError, "subscription not found")
}

func (server *stubServer) handleDeleteSubscription(request *lax.Request) interface{} {
	server.mutex.Lock()
	defer server.mutex.Unlock()

	user, errResponse := server.authenticate(request)

	if errResponse != nil {
		return errResponse
	}

	subscriptionID := mux.Vars(request.Request)["id"]

	for i, subscription := range server.subscriptions {
		if subscription.ID == subscriptionID && subscription.OwnerID == user.ID {
			server.subscriptions = append(
				server.subscriptions[:i],
				server.subscriptions[i+1:]...,
			)

			return map[string]interface{}{"deleted": subscriptionID}
		}
	}

	return lax.MakeErrorResponse(lax.CodeError, "subscription not found")
}

func (server *stubServer) handleTransactionList(request *lax.Request) interface{} {
	server.mutex.Lock()
	defer server.mutex.Unlock()

	query := request.URL.Query()
	name := query.Get("name")
	days, _ := strconv.Atoi(query.Get("days"))

	matched := []model.Transaction{}

	for _, transaction := range server.transactions {
		if name != "" && transaction.Name != name {
			continue
		}

		if days > 0 {
			createdAt, err := time.Parse(time.RFC3339, transaction.CreatedAt)

			if err != nil || time.Since(createdAt) > time.Duration(days)*day {
				continue
			}
		}

		matched = append(matched, transaction)
	}

	if days > 0 {
		return map[string]interface{}{"transactions": matched}
	}

	paging, start, end := paginate(request, 10, len(matched))

	return map[string]interface{}{
		"total":        paging.Total,
		"page":         paging.Page,
		"pageSize":     paging.PageSize,
		"transactions": matched[start:end],
	}
}

func (server *stubServer) handleListingList(request *lax.Request) interface{} {
	server.mutex.Lock()
	defer server.mutex.Unlock()

	name := request.URL.Query().Get("name")
	matched := []model.Listing{}

	for _, listing := range server.listings {
		if name != "" && listing.Name != name {
			continue
		}

		matched = append(matched, listing)
	}

	paging, start, end := paginate(request, 10, len(matched))

	return map[string]interface{}{
		"total":    paging.Total,
		"page":     paging.Page,
		"pageSize": paging.PageSize,
		"listings": matched[start:end],
	}
}

func main() {
	env.LoadEnvironmentVariables()

	config, err := env.LoadConfig()

	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %s\n", err)
		os.Exit(1)
	}

	if os.Getenv("DEBUG") != "" {
		lax.EnableDebugMode()
	}

	stub := newStubServer()

	router := mux.NewRouter().StrictSlash(true)
	apiRouter := router.PathPrefix("/api").Subrouter()

	apiRouter.HandleFunc("/items/filters", lax.Wrap(lax.View{
		Get: stub.handleItemFilters,
	}))
	apiRouter.HandleFunc("/items/{id}", lax.Wrap(lax.View{
		Get: stub.handleItem,
	}))
	apiRouter.HandleFunc("/items", lax.Wrap(lax.View{
		Get: stub.handleItemList,
	}))
	apiRouter.HandleFunc("/auth", lax.Wrap(lax.View{
		Get:  stub.handleCurrentUser,
		Post: stub.handleLogin,
	}))
	apiRouter.HandleFunc("/users", lax.Wrap(lax.View{
		Post: stub.handleSignup,
	}))
	apiRouter.HandleFunc("/subscriptions/{id}", lax.Wrap(lax.View{
		Put:    stub.handleUpdateSubscription,
		Delete: stub.handleDeleteSubscription,
	}))
	apiRouter.HandleFunc("/subscriptions", lax.Wrap(lax.View{
		Get:  stub.handleSubscriptionList,
		Post: stub.handleCreateSubscription,
	}))
	apiRouter.HandleFunc("/transactions", lax.Wrap(lax.View{
		Get: stub.handleTransactionList,
	}))
	apiRouter.HandleFunc("/listings", lax.Wrap(lax.View{
		Get: stub.handleListingList,
	}))

	server := http.Server{
		Addr:    config.StubAddr,
		Handler: router,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %s \n", err)
		}
	}()

	log.Printf("Stub API started on %s", config.StubAddr)
	<-done

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer func() {
		cancel()
	}()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shut down failed: %+v", err)
	}

	log.Println("Server shut down successfully")
}
