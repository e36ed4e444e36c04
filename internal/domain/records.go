package domain

import "time"

// Banjar is a neighborhood administrative unit, used as a lookup dimension
// for resident records.
type Banjar struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Krama is a registered resident record.
type Krama struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	NIK         string  `json:"nik"`
	Gender      string  `json:"gender"`
	StatusKrama string  `json:"status_krama"`
	Email       string  `json:"email,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	BanjarID    int64   `json:"banjar_id"`
	Banjar      *Banjar `json:"banjar,omitempty"`
	IsVerified  bool    `json:"is_verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tagihan is a billing record owed by a resident.
type Tagihan struct {
	ID           int64  `json:"id"`
	NIK          string `json:"nik"`
	Bulan        string `json:"bulan"`
	JenisTagihan string `json:"jenis_tagihan"`
	Jumlah       int64  `json:"jumlah"`
	Dedosan      int64  `json:"dedosan"`
	Peturunan    int64  `json:"peturunan"`
	Status       string `json:"status"`

	Krama *Krama `json:"krama,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Pembayaran is a payment submitted against a bill, pending admin verification.
type Pembayaran struct {
	ID          int64  `json:"id"`
	TagihanID   int64  `json:"tagihan_id"`
	JumlahBayar int64  `json:"jumlah_bayar"`
	Metode      string `json:"metode"`
	Status      string `json:"status"`

	Tagihan *Tagihan `json:"tagihan,omitempty"`
	Krama   *Krama   `json:"krama,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagihanLookup is the cashier/dashboard view returned by GET /cari-krama-nik/:nik:
// the resident identity plus their current bill and settlement status.
type TagihanLookup struct {
	Identitas Krama    `json:"identitas"`
	Tagihan   *Tagihan `json:"tagihan"`
	Total     int64    `json:"total"`
	Status    string   `json:"status"`
}

// KramaPage is one page of the resident listing, shaped like the billing
// API's paginator response.
type KramaPage struct {
	Data        []Krama `json:"data"`
	CurrentPage int     `json:"current_page"`
	LastPage    int     `json:"last_page"`
	Total       int     `json:"total"`
}
