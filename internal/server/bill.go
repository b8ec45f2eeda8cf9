package server

import (
	"io"

	paymentdomain "github.com/aquameter/aquameter/internal/payment/domain"
	readingdomain "github.com/aquameter/aquameter/internal/reading/domain"
	"github.com/aquameter/aquameter/pkg/apperror"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

var errTenantNotBound = apperror.Conflict("tenant_not_bound", "account is not bound to a flat")

// maxProofBytes caps proof uploads at 8 MiB.
const maxProofBytes = 8 << 20

// @Summary      Get bill
// @Tags         bill
// @Produce      json
// @Param        id   path      string  true  "Bill ID"
// @Success      200  {object}  readingdomain.Reading
// @Router       /bills/{id} [get]
func (s *Server) GetBill(c *gin.Context) {
	billID, ok := paramID(c, "id")
	if !ok {
		return
	}

	bill, err := s.visibleBill(c, billID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, bill)
}

// @Summary      Correct bill amount
// @Description  Administrative override of a bill amount
// @Tags         bill
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Bill ID"
// @Param        request body readingdomain.CorrectAmountRequest true "Correct Amount Request"
// @Success      200  {object}  readingdomain.Reading
// @Router       /bills/{id}/amount [patch]
func (s *Server) CorrectBillAmount(c *gin.Context) {
	billID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req readingdomain.CorrectAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_body", err.Error()))
		return
	}

	bill, err := s.readingsvc.CorrectAmount(c.Request.Context(), accountFrom(c).ID, billID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, bill)
}

// @Summary      Delete bill
// @Description  Remove a bill; the flat's latest reading falls back to the prior entry
// @Tags         bill
// @Param        id   path      string  true  "Bill ID"
// @Success      200
// @Router       /bills/{id} [delete]
func (s *Server) DeleteBill(c *gin.Context) {
	billID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := s.readingsvc.Delete(c.Request.Context(), accountFrom(c).ID, billID); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"deleted": true})
}

// @Summary      Settle bill via gateway
// @Description  Confirm a captured gateway charge against a pending bill; idempotent per reference
// @Tags         payment
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Bill ID"
// @Param        request body paymentdomain.SettleGatewayRequest true "Settle Request"
// @Success      200  {object}  paymentdomain.Payment
// @Router       /bills/{id}/settle [post]
func (s *Server) SettleBill(c *gin.Context) {
	billID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req paymentdomain.SettleGatewayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("external_reference", "required", "external_reference is required"))
		return
	}

	payment, err := s.paymentsvc.SettleGateway(c.Request.Context(), accountFrom(c).ID, billID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, payment)
}

// @Summary      Submit payment proof
// @Description  Upload evidence of a manual payment; moves the bill to pending_verification
// @Tags         payment
// @Accept       multipart/form-data
// @Produce      json
// @Param        id     path      string  true  "Bill ID"
// @Param        proof  formData  file    true  "Proof file"
// @Success      200  {object}  paymentdomain.Payment
// @Router       /bills/{id}/proof [post]
func (s *Server) SubmitProof(c *gin.Context) {
	billID, ok := paramID(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("proof")
	if err != nil {
		AbortWithError(c, newValidationError("proof", "required", "proof file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxProofBytes+1))
	if err != nil {
		AbortWithError(c, newValidationError("proof", "unreadable", "could not read proof file"))
		return
	}
	if len(data) > maxProofBytes {
		AbortWithError(c, newValidationError("proof", "too_large", "proof file exceeds the size limit"))
		return
	}

	payment, err := s.paymentsvc.SubmitProof(c.Request.Context(), accountFrom(c).ID, billID, paymentdomain.SubmitProofRequest{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, payment)
}

// @Summary      Verify payment proof
// @Description  Owner accepts the pending proof; the bill becomes paid
// @Tags         payment
// @Produce      json
// @Param        id   path      string  true  "Bill ID"
// @Success      200  {object}  paymentdomain.Payment
// @Router       /bills/{id}/verify [post]
func (s *Server) VerifyProof(c *gin.Context) {
	billID, ok := paramID(c, "id")
	if !ok {
		return
	}

	payment, err := s.paymentsvc.ConfirmVerification(c.Request.Context(), accountFrom(c).ID, billID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, payment)
}

// @Summary      Reject payment proof
// @Description  Owner rejects the pending proof; the bill reopens as pending
// @Tags         payment
// @Produce      json
// @Param        id   path      string  true  "Bill ID"
// @Success      200  {object}  paymentdomain.Payment
// @Router       /bills/{id}/reject [post]
func (s *Server) RejectProof(c *gin.Context) {
	billID, ok := paramID(c, "id")
	if !ok {
		return
	}

	payment, err := s.paymentsvc.RejectVerification(c.Request.Context(), accountFrom(c).ID, billID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, payment)
}

// @Summary      List bill payments
// @Tags         payment
// @Produce      json
// @Param        id   path      string  true  "Bill ID"
// @Success      200  {array}  paymentdomain.Payment
// @Router       /bills/{id}/payments [get]
func (s *Server) ListBillPayments(c *gin.Context) {
	billID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if _, err := s.visibleBill(c, billID); err != nil {
		AbortWithError(c, err)
		return
	}

	payments, err := s.paymentsvc.ListForBill(c.Request.Context(), billID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, payments)
}

// @Summary      List my bills
// @Description  Reading history for the flat the calling tenant is bound to
// @Tags         bill
// @Produce      json
// @Param        page_token  query  string  false  "Page token"
// @Param        page_size   query  int     false  "Page size"
// @Success      200  {object}  readingdomain.ListResponse
// @Router       /me/bills [get]
func (s *Server) ListMyBills(c *gin.Context) {
	account := accountFrom(c)
	if account.FlatID == nil {
		AbortWithError(c, errTenantNotBound)
		return
	}

	resp, err := s.readingsvc.ListForFlat(c.Request.Context(), *account.FlatID, listRequestFromQuery(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, resp.Readings, &resp.PageInfo)
}

// @Summary      My latest bill
// @Tags         bill
// @Produce      json
// @Success      200  {object}  readingdomain.Reading
// @Router       /me/bills/latest [get]
func (s *Server) LatestMyBill(c *gin.Context) {
	account := accountFrom(c)
	if account.FlatID == nil {
		AbortWithError(c, errTenantNotBound)
		return
	}

	bill, err := s.readingsvc.LatestForFlat(c.Request.Context(), *account.FlatID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if bill == nil {
		AbortWithError(c, readingdomain.ErrBillNotFound)
		return
	}
	respondData(c, bill)
}

// visibleBill loads the bill and checks the caller is either the
// tenant bound to its flat or the owner of its property. Strangers
// get not_found rather than a hint that the bill exists.
func (s *Server) visibleBill(c *gin.Context, billID snowflake.ID) (*readingdomain.Reading, error) {
	bill, err := s.readingsvc.Get(c.Request.Context(), billID)
	if err != nil {
		return nil, err
	}

	account := accountFrom(c)
	if account.FlatID != nil && *account.FlatID == bill.FlatID {
		return bill, nil
	}
	if _, err := s.propertysvc.Get(c.Request.Context(), account.ID, bill.PropertyID); err != nil {
		return nil, readingdomain.ErrBillNotFound
	}
	return bill, nil
}
