package domain

// Armchair is one capacity unit of a room. JSON field names match the
// wire format the client already speaks.
type Armchair struct {
	ID     int    `json:"id"`
	UserID string `json:"id_user"`
	Busy   bool   `json:"isBusy"`
}

// Room is a fixed-capacity ordered set of armchairs.
// Full is derived state: true once every armchair is busy.
type Room struct {
	ID        string     `json:"id"`
	Capacity  int        `json:"capacity"`
	Armchairs []Armchair `json:"armchairs"`
	Full      bool       `json:"isFull"`
}

// Occupied counts busy armchairs.
func (r *Room) Occupied() int {
	n := 0
	for _, a := range r.Armchairs {
		if a.Busy {
			n++
		}
	}
	return n
}
