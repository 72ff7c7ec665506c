package models

import "time"

// Session is an authenticated identity handed out by the auth provider.
type Session struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email,omitempty"`
	DisplayName  string    `json:"displayName,omitempty"`
	IDToken      string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"-"`
}

// UserProfile is the per-user document written at registration and keyed by UID.
type UserProfile struct {
	Firstname string `firestore:"firstname" json:"firstname"`
	Lastname  string `firestore:"lastname" json:"lastname"`
	Mobileno  string `firestore:"mobileno" json:"mobileno"`
	Email     string `firestore:"email" json:"email"`
}

// FullName joins first and last name.
func (p UserProfile) FullName() string {
	return p.Firstname + " " + p.Lastname
}

// ProfileCard is what the profile sidebar shows for the current session.
type ProfileCard struct {
	UID         string `json:"uid,omitempty"`
	SignedIn    bool   `json:"signedIn"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
	DisplayName string `json:"displayName,omitempty"`
}

// SignedOutCard is the placeholder card shown when nobody is signed in.
func SignedOutCard() ProfileCard {
	return ProfileCard{
		Name:  "User Name",
		Email: "user@example.com",
	}
}
