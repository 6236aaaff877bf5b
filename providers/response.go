package providers

import "fmt"

// User is the subset of the user endpoint response that the app reads.
type User struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// Fork is the subset of the fork endpoint response that the app reads.
type Fork struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
}

// DecodeUser decodes a user endpoint response body.
func DecodeUser(resp *Response) (*User, error) {
	var user User
	if err := resp.Decode(&user); err != nil {
		return nil, err
	}
	if user.ID == 0 && user.Login == "" {
		return nil, fmt.Errorf("user response has neither id nor login")
	}
	return &user, nil
}

// DecodeFork decodes a fork endpoint response body.
func DecodeFork(resp *Response) (*Fork, error) {
	var fork Fork
	if err := resp.Decode(&fork); err != nil {
		return nil, err
	}
	return &fork, nil
}
