package model

// StatusOK is the envelope status the server uses for success.
const StatusOK = 0

// User is the identity returned by a successful login.
type User struct {
	ID   int    `json:"id"`
	Name string `json:"nombre"`
}

// AuthResponse is the envelope returned by /login and /register.
type AuthResponse struct {
	Status  int    `json:"status"`
	Message string `json:"mensaje"`
	Data    *User  `json:"data"`
}

// OK reports whether the server accepted the request.
func (r *AuthResponse) OK() bool { return r != nil && r.Status == StatusOK }

// TaskResponse is the envelope returned by every /tarea endpoint.
type TaskResponse struct {
	Status  int    `json:"status"`
	Message string `json:"mensaje"`
	Data    []Task `json:"data"`
}

// OK reports whether the server accepted the request.
func (r *TaskResponse) OK() bool { return r != nil && r.Status == StatusOK }

// Registration is the body of POST /register.
type Registration struct {
	Email     string `json:"email"`
	Name      string `json:"nombre"`
	BirthDate string `json:"fecha_nacimiento"`
	Password  string `json:"contrasenia"`
	Gender    string `json:"genero"`
}

// Credentials is the body of POST /login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"contrasenia"`
}
