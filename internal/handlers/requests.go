// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// requests.go defines the JSON request bodies accepted by the API and
// their validation rules. Validation failures surface as 400 responses
// carrying the first rule message.
package handlers

import (
	"encoding/json"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"inkwell/internal/apperr"
)

// Field limits, matching the stored column constraints.
const (
	maxCategoryNameLen = 50
	maxDescriptionLen  = 200
	maxTitleLen        = 200
	maxCommentLen      = 1000
	minPasswordLen     = 6
	maxPasswordLen     = 72 // bcrypt input cap
)

// decodeJSON parses the request body into dst and runs its validation
// rules. Both failure modes map to a 400.
func decodeJSON(r *http.Request, dst validation.Validatable) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("Invalid JSON body")
	}
	if err := dst.Validate(); err != nil {
		return apperr.Validation(err.Error())
	}
	return nil
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *registerRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, maxCategoryNameLen)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required, validation.Length(minPasswordLen, maxPasswordLen)),
	)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Token    string `json:"token"` // TOTP code, required only when 2FA is enabled
}

func (req *loginRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required),
	)
}

type updateDetailsRequest struct {
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
	Bio    *string `json:"bio"`
}

func (req *updateDetailsRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, maxCategoryNameLen)),
		validation.Field(&req.Bio, validation.Length(0, maxDescriptionLen)),
	)
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (req *updatePasswordRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.CurrentPassword, validation.Required),
		validation.Field(&req.NewPassword, validation.Required, validation.Length(minPasswordLen, maxPasswordLen)),
	)
}

type twoFAEnableRequest struct {
	Token string `json:"token"`
}

func (req *twoFAEnableRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Token, validation.Required, validation.Length(6, 6), is.Digit),
	)
}

type categoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Color       string  `json:"color"`
}

func (req *categoryRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, maxCategoryNameLen)),
		validation.Field(&req.Description, validation.Length(0, maxDescriptionLen)),
		validation.Field(&req.Color, is.HexColor),
	)
}

// postRequest's optional fields are pointers (or a nil-able slice) so an
// update can tell "omitted" apart from an explicit zero value and leave
// the stored field untouched.
type postRequest struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	FeaturedImage *string  `json:"featuredImage"`
	IsPublished   *bool    `json:"isPublished"`
}

func (req *postRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, maxTitleLen)),
		validation.Field(&req.Content, validation.Required),
		validation.Field(&req.Category, validation.Required),
	)
}

type commentRequest struct {
	Content string `json:"content"`
}

func (req *commentRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Content, validation.Required, validation.Length(1, maxCommentLen)),
	)
}
