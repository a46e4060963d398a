package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"farmerfriend-backend/internal/model"
	"farmerfriend-backend/internal/notify"
	"farmerfriend-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) clock { return func() time.Time { return t } }

type fakeAccounts struct {
	mu   sync.Mutex
	role model.Role
	docs map[primitive.ObjectID]*model.Account
}

func newFakeAccounts(role model.Role) *fakeAccounts {
	return &fakeAccounts{role: role, docs: map[primitive.ObjectID]*model.Account{}}
}

func (f *fakeAccounts) copyOf(a *model.Account) *model.Account {
	c := *a
	c.Role = f.role
	if a.Cart != nil {
		c.Cart = make(map[string]int, len(a.Cart))
		for k, v := range a.Cart {
			c.Cart[k] = v
		}
	}
	return &c
}

func (f *fakeAccounts) Role() model.Role { return f.role }

func (f *fakeAccounts) FindByID(_ context.Context, id primitive.ObjectID) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return f.copyOf(a), nil
}

func (f *fakeAccounts) FindByEmail(_ context.Context, email string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.docs {
		if a.Email == email {
			return f.copyOf(a), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccounts) FindByResetToken(_ context.Context, tokenHash string, now time.Time) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.docs {
		if a.ResetPasswordToken == tokenHash && a.ResetPasswordExpire != nil && a.ResetPasswordExpire.After(now) {
			return f.copyOf(a), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccounts) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Account
	for _, id := range ids {
		if a, ok := f.docs[id]; ok {
			out = append(out, f.copyOf(a))
		}
	}
	return out, nil
}

func (f *fakeAccounts) List(_ context.Context) ([]*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Account, 0, len(f.docs))
	for _, a := range f.docs {
		out = append(out, f.copyOf(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeAccounts) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.docs)), nil
}

func (f *fakeAccounts) Create(_ context.Context, a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.Role = f.role
	f.docs[a.ID] = f.copyOf(a)
	return nil
}

func (f *fakeAccounts) update(id primitive.ObjectID, fn func(a *model.Account)) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	fn(a)
	return f.copyOf(a), nil
}

func (f *fakeAccounts) UpdateProfile(_ context.Context, id primitive.ObjectID, name, email string) (*model.Account, error) {
	return f.update(id, func(a *model.Account) { a.Name, a.Email = name, email })
}

func (f *fakeAccounts) SetPassword(_ context.Context, id primitive.ObjectID, hash string) error {
	_, err := f.update(id, func(a *model.Account) { a.Password = hash })
	return err
}

func (f *fakeAccounts) SetResetToken(_ context.Context, id primitive.ObjectID, tokenHash string, expire time.Time) error {
	_, err := f.update(id, func(a *model.Account) {
		a.ResetPasswordToken = tokenHash
		a.ResetPasswordExpire = &expire
	})
	return err
}

func (f *fakeAccounts) ResetPassword(_ context.Context, id primitive.ObjectID, hash string) error {
	_, err := f.update(id, func(a *model.Account) {
		a.Password = hash
		a.ResetPasswordToken = ""
		a.ResetPasswordExpire = nil
	})
	return err
}

func (f *fakeAccounts) Delete(_ context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[id]
	delete(f.docs, id)
	return ok, nil
}

func (f *fakeAccounts) AddCartItem(_ context.Context, id, productID primitive.ObjectID, qty int) (*model.Account, error) {
	return f.update(id, func(a *model.Account) {
		if a.Cart == nil {
			a.Cart = map[string]int{}
		}
		a.Cart[productID.Hex()] += qty
	})
}

func (f *fakeAccounts) SetCartItem(_ context.Context, id, productID primitive.ObjectID, qty int) (*model.Account, error) {
	return f.update(id, func(a *model.Account) {
		if qty == 0 {
			delete(a.Cart, productID.Hex())
			return
		}
		if a.Cart == nil {
			a.Cart = map[string]int{}
		}
		a.Cart[productID.Hex()] = qty
	})
}

func (f *fakeAccounts) ClearCart(_ context.Context, id primitive.ObjectID) error {
	_, err := f.update(id, func(a *model.Account) { a.Cart = nil })
	return err
}

type fakeProducts struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]*model.Product

	// decrementErr fails every DecrementStock call when set.
	decrementErr error
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{docs: map[primitive.ObjectID]*model.Product{}}
}

func (f *fakeProducts) add(p *model.Product) *model.Product {
	_ = f.Create(context.Background(), p)
	return p
}

func (f *fakeProducts) stock(id primitive.ObjectID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[id].Stock
}

func cloneProduct(p *model.Product) *model.Product {
	c := *p
	return &c
}

func (f *fakeProducts) Create(_ context.Context, p *model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	f.docs[p.ID] = cloneProduct(p)
	return nil
}

func (f *fakeProducts) FindByID(_ context.Context, id primitive.ObjectID) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneProduct(p), nil
}

func (f *fakeProducts) FindAll(_ context.Context) ([]*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Product
	for _, p := range f.docs {
		out = append(out, cloneProduct(p))
	}
	return out, nil
}

func (f *fakeProducts) FindByFarmer(_ context.Context, farmerID primitive.ObjectID) ([]*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Product
	for _, p := range f.docs {
		if p.FarmerID == farmerID {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

func (f *fakeProducts) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Product
	for _, id := range ids {
		if p, ok := f.docs[id]; ok {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

func (f *fakeProducts) Delete(_ context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[id]
	delete(f.docs, id)
	return ok, nil
}

func (f *fakeProducts) SetStock(_ context.Context, id primitive.ObjectID, stock int) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Stock = stock
	return cloneProduct(p), nil
}

func (f *fakeProducts) DecrementStock(_ context.Context, id primitive.ObjectID, qty int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.decrementErr != nil {
		return false, f.decrementErr
	}
	p, ok := f.docs[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	return true, nil
}

func (f *fakeProducts) IncrementStock(_ context.Context, id primitive.ObjectID, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.docs[id]; ok {
		p.Stock += qty
	}
	return nil
}

func (f *fakeProducts) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.docs)), nil
}

type fakeOrders struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]*model.Order

	// beforeTransition runs inside TransitionStatus before the status check.
	beforeTransition func(o *model.Order)
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{docs: map[primitive.ObjectID]*model.Order{}}
}

func cloneOrder(o *model.Order) *model.Order {
	c := *o
	c.Items = append([]model.OrderItem(nil), o.Items...)
	return &c
}

func (f *fakeOrders) status(id primitive.ObjectID) model.OrderStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[id].Status
}

func (f *fakeOrders) Create(_ context.Context, o *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	f.docs[o.ID] = cloneOrder(o)
	return nil
}

func (f *fakeOrders) FindByID(_ context.Context, id primitive.ObjectID) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (f *fakeOrders) FindByUser(_ context.Context, userID primitive.ObjectID) ([]*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Order
	for _, o := range f.docs {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

func (f *fakeOrders) FindContainingProducts(_ context.Context, productIDs []primitive.ObjectID) ([]*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[primitive.ObjectID]bool{}
	for _, id := range productIDs {
		want[id] = true
	}
	var out []*model.Order
	for _, o := range f.docs {
		for _, it := range o.Items {
			if want[it.ProductID] {
				out = append(out, cloneOrder(o))
				break
			}
		}
	}
	return out, nil
}

func (f *fakeOrders) TransitionStatus(_ context.Context, id primitive.ObjectID, from, to model.OrderStatus) (*model.Order, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.docs[id]
	if !ok {
		return nil, false, nil
	}
	if f.beforeTransition != nil {
		hook := f.beforeTransition
		f.beforeTransition = nil
		hook(o)
	}
	if o.Status != from {
		return nil, false, nil
	}
	o.Status = to
	return cloneOrder(o), true, nil
}

func (f *fakeOrders) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.docs)), nil
}

func (f *fakeOrders) Revenue(_ context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum float64
	for _, o := range f.docs {
		sum += o.TotalAmount
	}
	return sum, nil
}

type fakeFeedbacks struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]*model.Feedback
}

func newFakeFeedbacks() *fakeFeedbacks {
	return &fakeFeedbacks{docs: map[primitive.ObjectID]*model.Feedback{}}
}

func cloneFeedback(f *model.Feedback) *model.Feedback {
	c := *f
	c.Likes = append([]primitive.ObjectID{}, f.Likes...)
	c.Replies = append([]model.Reply{}, f.Replies...)
	return &c
}

func (f *fakeFeedbacks) Create(_ context.Context, fb *model.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fb.ID.IsZero() {
		fb.ID = primitive.NewObjectID()
	}
	if fb.Likes == nil {
		fb.Likes = []primitive.ObjectID{}
	}
	if fb.Replies == nil {
		fb.Replies = []model.Reply{}
	}
	f.docs[fb.ID] = cloneFeedback(fb)
	return nil
}

func (f *fakeFeedbacks) FindByID(_ context.Context, id primitive.ObjectID) (*model.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fb, ok := f.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneFeedback(fb), nil
}

func (f *fakeFeedbacks) FindByProduct(_ context.Context, productID primitive.ObjectID) ([]*model.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.Feedback{}
	for _, fb := range f.docs {
		if fb.ProductID == productID {
			out = append(out, cloneFeedback(fb))
		}
	}
	return out, nil
}

func (f *fakeFeedbacks) modify(id primitive.ObjectID, fn func(fb *model.Feedback)) (*model.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fb, ok := f.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	fn(fb)
	return cloneFeedback(fb), nil
}

func (f *fakeFeedbacks) AddLike(_ context.Context, id, userID primitive.ObjectID) (*model.Feedback, error) {
	return f.modify(id, func(fb *model.Feedback) {
		if !fb.LikedBy(userID) {
			fb.Likes = append(fb.Likes, userID)
		}
	})
}

func (f *fakeFeedbacks) RemoveLike(_ context.Context, id, userID primitive.ObjectID) (*model.Feedback, error) {
	return f.modify(id, func(fb *model.Feedback) {
		kept := fb.Likes[:0]
		for _, l := range fb.Likes {
			if l != userID {
				kept = append(kept, l)
			}
		}
		fb.Likes = kept
	})
}

func (f *fakeFeedbacks) AddReply(_ context.Context, id primitive.ObjectID, r model.Reply) (*model.Feedback, error) {
	return f.modify(id, func(fb *model.Feedback) { fb.Replies = append(fb.Replies, r) })
}

func (f *fakeFeedbacks) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.docs)), nil
}

// recorder captures dispatched or sent messages. A non-nil err fails Send.
type recorder struct {
	mu   sync.Mutex
	msgs []notify.Message
	err  error
}

func (r *recorder) Dispatch(_ context.Context, m notify.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
}

func (r *recorder) Send(_ context.Context, m notify.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, m)
	return nil
}

func (r *recorder) messages() []notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Message(nil), r.msgs...)
}

type fixture struct {
	users, farmers, admins *fakeAccounts
	products               *fakeProducts
	orders                 *fakeOrders
	feedbacks              *fakeFeedbacks
	accounts               Accounts
	notes                  *recorder
	mail                   *recorder
}

func newFixture() *fixture {
	f := &fixture{
		users:     newFakeAccounts(model.RoleUser),
		farmers:   newFakeAccounts(model.RoleFarmer),
		admins:    newFakeAccounts(model.RoleAdmin),
		products:  newFakeProducts(),
		orders:    newFakeOrders(),
		feedbacks: newFakeFeedbacks(),
		notes:     &recorder{},
		mail:      &recorder{},
	}
	f.accounts = Accounts{Users: f.users, Farmers: f.farmers, Admins: f.admins}
	return f
}

func (f *fixture) account(repo *fakeAccounts, name, email string) *Identity {
	a := &model.Account{Name: name, Email: email}
	_ = repo.Create(context.Background(), a)
	return &Identity{ID: a.ID, Role: repo.role, Name: name, Email: email}
}

func (f *fixture) orderService() *OrderService {
	return NewOrderService(f.orders, f.products, f.accounts, f.notes, nil)
}
