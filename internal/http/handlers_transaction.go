package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"tabungan/internal/core"
)

// nominalValue accepts a nominal as either a JSON number or a formatted
// string ("500.000", "-200.000"). Strings go through the display parser so
// the API takes exactly what the dashboard renders.
type nominalValue struct {
	value int64
	set   bool
}

func (n *nominalValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := core.ParseNominal(s)
		if err != nil {
			return err
		}
		n.value, n.set = v, true
		return nil
	}
	var i int64
	if err := json.Unmarshal(b, &i); err != nil {
		return core.ErrInvalidAmount
	}
	n.value, n.set = i, true
	return nil
}

type createTransactionRequest struct {
	Jenis      string       `json:"jenis"`
	Nominal    nominalValue `json:"nominal"`
	Keterangan string       `json:"keterangan"`
	Tanggal    string       `json:"tanggal"`
}

type updateTransactionRequest struct {
	Nominal    *nominalValue `json:"nominal"`
	Keterangan *string       `json:"keterangan"`
	Tanggal    *string       `json:"tanggal"`
}

type transactionResponse struct {
	ID         int64  `json:"id"`
	Jenis      string `json:"jenis"`
	Nominal    int64  `json:"nominal"`
	NominalFmt string `json:"nominal_fmt"`
	Keterangan string `json:"keterangan"`
	Tanggal    string `json:"tanggal"`
	IsActive   bool   `json:"is_active"`
}

type transactionListResponse struct {
	Transactions []transactionResponse `json:"transactions"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:         tx.ID,
		Jenis:      string(tx.Category),
		Nominal:    tx.Nominal,
		NominalFmt: core.FormatNominal(strconv.FormatInt(tx.Nominal, 10)),
		Keterangan: tx.Note,
		Tanggal:    tx.Date.String(),
		IsActive:   tx.Active,
	}
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	var (
		txs []core.Transaction
		err error
	)
	if jenis := strings.TrimSpace(r.URL.Query().Get("jenis")); jenis != "" {
		txs, err = s.svc.ListByCategory(r.Context(), core.Category(jenis))
	} else {
		txs, err = s.svc.ListAll(r.Context())
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "error", err)
		writeDomainError(w, err)
		return
	}

	resp := transactionListResponse{Transactions: make([]transactionResponse, 0, len(txs))}
	for _, tx := range txs {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		if errors.Is(err, core.ErrInvalidAmount) {
			writeDomainError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Nominal.set {
		writeDomainError(w, core.ErrMissingNominal)
		return
	}

	date, err := core.ParseDate(strings.TrimSpace(req.Tanggal))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	tx := core.Transaction{
		Category: core.Category(strings.TrimSpace(req.Jenis)),
		Nominal:  req.Nominal.value,
		Note:     strings.TrimSpace(req.Keterangan),
		Date:     date,
	}

	id, err := s.svc.Create(r.Context(), tx)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateDashboards()

	created, err := s.svc.Get(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Read back created transaction failed", "id", id, "error", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	tx, err := s.svc.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var req updateTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		if errors.Is(err, core.ErrInvalidAmount) {
			writeDomainError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var upd core.TransactionUpdate
	if req.Nominal != nil && req.Nominal.set {
		upd.Nominal = &req.Nominal.value
	}
	if req.Keterangan != nil {
		note := strings.TrimSpace(*req.Keterangan)
		upd.Note = &note
	}
	if req.Tanggal != nil {
		date, err := core.ParseDate(strings.TrimSpace(*req.Tanggal))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		upd.Date = &date
	}
	if upd.Nominal == nil && upd.Note == nil && upd.Date == nil {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := s.svc.Update(r.Context(), id, upd); err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateDashboards()

	tx, err := s.svc.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := s.svc.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateDashboards()
	w.WriteHeader(http.StatusNoContent)
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
