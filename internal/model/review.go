package model

// Review - отзыв о туре. Отзыв становится видимым только после модерации на сервере.
type Review struct {
	ID        int    `json:"id,omitempty"`
	TourID    int    `json:"tour_id"`
	BookingID *int   `json:"booking_id,omitempty"`
	Author    string `json:"author"`
	Email     string `json:"email"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	Approved  bool   `json:"is_approved,omitempty"`
}

// ContactMessage - сообщение из формы обратной связи.
type ContactMessage struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Message      string `json:"message"`
	MobileNumber string `json:"mobile_number,omitempty"`
}
