package main

type Post struct {
	ID    int64
	Title string
	Text  string
}

// deleteResult is the JSON body answered by the delete endpoint.
type deleteResult struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type flash struct {
	Category string
	Message  string
}
