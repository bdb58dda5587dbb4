package dto

type CreateTaskRequest struct {
	Title string `json:"title"`
}

func (r CreateTaskRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Title == "" {
		errors["title"] = "Title is required"
	} else if len(r.Title) > 200 {
		errors["title"] = "Title must be at most 200 characters"
	}
	return errors
}

// UpdateTaskRequest serves both PUT and PATCH. Pointers distinguish
// "absent" from zero values so PATCH can update complete alone.
type UpdateTaskRequest struct {
	Title    *string `json:"title"`
	Complete *bool   `json:"complete"`
}

// ValidateFull enforces the full-update contract: title must be present.
func (r UpdateTaskRequest) ValidateFull() map[string]string {
	errors := make(map[string]string)
	if r.Title == nil || *r.Title == "" {
		errors["title"] = "Title is required"
	} else if len(*r.Title) > 200 {
		errors["title"] = "Title must be at most 200 characters"
	}
	return errors
}

// ValidatePartial only checks fields that were sent.
func (r UpdateTaskRequest) ValidatePartial() map[string]string {
	errors := make(map[string]string)
	if r.Title != nil {
		if *r.Title == "" {
			errors["title"] = "Title may not be blank"
		} else if len(*r.Title) > 200 {
			errors["title"] = "Title must be at most 200 characters"
		}
	}
	return errors
}

type TaskResponse struct {
	ID        string `json:"id"`
	Owner     string `json:"owner"`
	Title     string `json:"title"`
	Complete  bool   `json:"complete"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
