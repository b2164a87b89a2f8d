package domain

// ThreadNode is one node of an assembled reply tree: a message and its
// replies in ascending creation order.
type ThreadNode struct {
	Message *MessageResponse `json:"message"`
	Replies []*ThreadNode    `json:"replies"`
}

// ThreadResponse is the assembled forest for a thread root. Roots normally
// has exactly one element; an inconsistent input set can yield more.
type ThreadResponse struct {
	Roots []*ThreadNode `json:"roots"`
}
