// Package types holds the JSON shapes of the HTTP API.
package types

type CreateMatchResponse struct {
	Code string `json:"code"`
}

// ResultReport is posted by a client when its game reaches the end screen.
type ResultReport struct {
	Winner        string `json:"winner"` // "challenger" | "accepter" | "draw"
	Turns         int    `json:"turns"`
	CheatDetected bool   `json:"cheat_detected"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
