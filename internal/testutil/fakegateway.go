package testutil

import (
	"context"
	"sync"

	"github.com/nhle/tareas/internal/model"
)

// FakeGateway is an in-memory stand-in for the task API. It stores tasks
// per user, assigns ids on create and applies patches on update.
type FakeGateway struct {
	mu     sync.Mutex
	tasks  map[int][]model.Task
	users  map[string]fakeUser
	nextID int

	// Date stamped on created tasks when the payload has none.
	Today string

	// Error injection for testing. A non-nil Err is returned as the
	// transport error; a non-zero Status is returned in the envelope.
	ListErr      error
	ListStatus   int
	ListMessage  string
	ListNullData bool
	CreateErr    error
	CreateStatus int
	UpdateErr    error
	UpdateStatus int
	LoginErr     error
	RegisterErr  error
	// LoginNullData answers a valid login with status 0, LoginMessage
	// and no user.
	LoginNullData bool
	LoginMessage  string
	StatusMsg    string

	// Call counts.
	ListCalls   int
	CreateCalls int
	UpdateCalls int
	LoginCalls  int

	// Last payloads received.
	LastCreate model.NewTask
	LastPatch  model.TaskPatch
}

type fakeUser struct {
	id       int
	name     string
	password string
}

// NewFakeGateway creates an empty FakeGateway.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		tasks:  make(map[int][]model.Task),
		users:  make(map[string]fakeUser),
		nextID: 1,
		Today:  "2024-05-01",
	}
}

// AddTask seeds a task for userID. A zero task.ID gets the next free id.
func (f *FakeGateway) AddTask(userID int, task model.Task) model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if task.ID == 0 {
		task.ID = f.nextID
	}
	if task.ID >= f.nextID {
		f.nextID = task.ID + 1
	}
	if task.Status == "" {
		task.Status = model.StatusActive
	}
	f.tasks[userID] = append(f.tasks[userID], task)
	return task
}

// AddUser seeds an account for Login.
func (f *FakeGateway) AddUser(id int, email, name, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email] = fakeUser{id: id, name: name, password: password}
}

// Tasks returns a copy of what the fake holds for userID.
func (f *FakeGateway) Tasks(userID int) []model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Task, len(f.tasks[userID]))
	copy(out, f.tasks[userID])
	return out
}

// Calls returns the number of task requests made so far.
func (f *FakeGateway) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ListCalls + f.CreateCalls + f.UpdateCalls
}

// ListTasks implements tasks.Gateway.
func (f *FakeGateway) ListTasks(ctx context.Context, userID int) (*model.TaskResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++

	if f.ListErr != nil {
		return nil, f.ListErr
	}
	if f.ListStatus != 0 {
		return &model.TaskResponse{Status: f.ListStatus, Message: f.ListMessage}, nil
	}
	if f.ListNullData {
		return &model.TaskResponse{}, nil
	}

	data := make([]model.Task, len(f.tasks[userID]))
	copy(data, f.tasks[userID])
	return &model.TaskResponse{Data: data}, nil
}

// CreateTask implements tasks.Gateway.
func (f *FakeGateway) CreateTask(ctx context.Context, task model.NewTask) (*model.TaskResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls++
	f.LastCreate = task

	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	if f.CreateStatus != 0 {
		return &model.TaskResponse{Status: f.CreateStatus, Message: f.StatusMsg}, nil
	}

	date := task.CreationDate
	if date == "" {
		date = f.Today
	}
	created := model.Task{
		ID:           f.nextID,
		Title:        task.Title,
		Priority:     task.Priority,
		Description:  task.Description,
		CreationDate: date,
		Status:       task.Status,
		Group:        task.Group,
	}
	f.nextID++
	f.tasks[task.UserID] = append(f.tasks[task.UserID], created)
	return &model.TaskResponse{Data: []model.Task{created}}, nil
}

// UpdateTask implements tasks.Gateway.
func (f *FakeGateway) UpdateTask(ctx context.Context, patch model.TaskPatch) (*model.TaskResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	f.LastPatch = patch

	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	if f.UpdateStatus != 0 {
		return &model.TaskResponse{Status: f.UpdateStatus, Message: f.StatusMsg}, nil
	}

	for uid, list := range f.tasks {
		for i := range list {
			if list[i].ID != patch.ID {
				continue
			}
			t := &f.tasks[uid][i]
			if patch.Title != nil {
				t.Title = *patch.Title
			}
			if patch.Priority != nil {
				t.Priority = *patch.Priority
			}
			if patch.Description != nil {
				t.Description = *patch.Description
			}
			if patch.Group != nil {
				t.Group = *patch.Group
			}
			if patch.Status != nil {
				t.Status = *patch.Status
			}
			return &model.TaskResponse{Data: []model.Task{*t}}, nil
		}
	}
	return &model.TaskResponse{Status: 1, Message: "Tarea no encontrada"}, nil
}

// Login checks credentials against the seeded users.
func (f *FakeGateway) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoginCalls++

	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	u, ok := f.users[email]
	if !ok || u.password != password {
		return &model.AuthResponse{Status: 1, Message: "Credenciales incorrectas"}, nil
	}
	if f.LoginNullData {
		return &model.AuthResponse{Message: f.LoginMessage}, nil
	}
	return &model.AuthResponse{Data: &model.User{ID: u.id, Name: u.name}}, nil
}

// Register adds an account unless the email is taken.
func (f *FakeGateway) Register(ctx context.Context, reg model.Registration) (*model.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.RegisterErr != nil {
		return nil, f.RegisterErr
	}
	if _, taken := f.users[reg.Email]; taken {
		return &model.AuthResponse{Status: 1, Message: "El email ya está registrado"}, nil
	}
	id := len(f.users) + 1
	f.users[reg.Email] = fakeUser{id: id, name: reg.Name, password: reg.Password}
	return &model.AuthResponse{Data: &model.User{ID: id, Name: reg.Name}}, nil
}
