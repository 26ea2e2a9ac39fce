package mockservice

import (
	"errors"
	"sort"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/storefront-qa/api-contract-tests/servicedef"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

var (
	errUserNotFound    = errors.New("user not found")
	errProductNotFound = errors.New("product not found")
	errUsernameTaken   = errors.New("username taken")
	errEmailTaken      = errors.New("email taken")
)

type storedUser struct {
	user         servicedef.User
	passwordHash []byte
}

// store keeps users and products in memory. Ids are never reused.
type store struct {
	users      map[int]storedUser
	products   map[int]servicedef.Product
	nextID     int
	hashCost   int
	loginCount map[string]int
	lock       sync.Mutex
}

func newStore(hashCost int) *store {
	return &store{
		users:      make(map[int]storedUser),
		products:   make(map[int]servicedef.Product),
		nextID:     1,
		hashCost:   hashCost,
		loginCount: make(map[string]int),
	}
}

func (s *store) addUser(u servicedef.User) (servicedef.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.hashCost)
	if err != nil {
		return servicedef.User{}, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	for _, existing := range s.users {
		if existing.user.Username == u.Username {
			return servicedef.User{}, errUsernameTaken
		}
		if existing.user.Email == u.Email {
			return servicedef.User{}, errEmailTaken
		}
	}
	u.ID = ldvalue.NewOptionalInt(s.nextID)
	u.Password = ""
	s.nextID++
	s.users[u.ID.IntValue()] = storedUser{user: u, passwordHash: hash}
	return u, nil
}

// authenticate checks a username and password, and counts the attempt.
func (s *store) authenticate(username, password string) (servicedef.User, bool) {
	s.lock.Lock()
	s.loginCount[username]++
	var found *storedUser
	for _, existing := range s.users {
		if existing.user.Username == username {
			found = &existing
			break
		}
	}
	s.lock.Unlock()

	if found == nil || bcrypt.CompareHashAndPassword(found.passwordHash, []byte(password)) != nil {
		return servicedef.User{}, false
	}
	return found.user, true
}

func (s *store) listUsers(username string) []servicedef.User {
	s.lock.Lock()
	defer s.lock.Unlock()
	ret := make([]servicedef.User, 0, len(s.users))
	for _, u := range s.users {
		if username == "" || u.user.Username == username {
			ret = append(ret, u.user)
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID.IntValue() < ret[j].ID.IntValue() })
	return ret
}

func (s *store) deleteUser(id int) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.users[id]; !ok {
		return errUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *store) addProduct(p servicedef.Product) servicedef.Product {
	s.lock.Lock()
	defer s.lock.Unlock()
	p.ID = ldvalue.NewOptionalInt(s.nextID)
	s.nextID++
	s.products[p.ID.IntValue()] = p
	return p
}

func (s *store) listProducts() []servicedef.Product {
	s.lock.Lock()
	defer s.lock.Unlock()
	ret := make([]servicedef.Product, 0, len(s.products))
	for _, p := range s.products {
		ret = append(ret, p)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID.IntValue() < ret[j].ID.IntValue() })
	return ret
}

func (s *store) deleteProduct(id int) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.products[id]; !ok {
		return errProductNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *store) logins(username string) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.loginCount[username]
}
