package models

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"omitempty,max=100"`
}

// UpdateUserRequest overwrites name; empty email or role keep the stored value.
type UpdateUserRequest struct {
	Name  string `json:"name" validate:"omitempty,max=100"`
	Email string `json:"email" validate:"omitempty,email,max=100"`
	Role  string `json:"role" validate:"omitempty,oneof=ADMIN MEMBER"`
}

type ProjectRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Color string `json:"color" validate:"omitempty,max=20"`
}

type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	StartDate   *Date  `json:"startDate"`
	DueDate     *Date  `json:"dueDate"`
	ProjectID   string `json:"projectId" validate:"required,uuid"`
}

type UpdateTaskRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	StartDate   *Date  `json:"startDate"`
	DueDate     *Date  `json:"dueDate"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type CommentRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}

type AttachmentRequest struct {
	FileName    string `json:"fileName" validate:"required,max=255"`
	FileURL     string `json:"fileUrl" validate:"required,url,max=2048"`
	ContentType string `json:"contentType" validate:"omitempty,max=255"`
	Size        int64  `json:"size" validate:"min=0"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
