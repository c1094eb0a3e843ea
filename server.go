package lnurl

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gorilla/mux"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/patrickmn/go-cache"
)

// Server is an LNURL-pay service backed by lnd. Every invoice it hands out
// carries an aes success action that only the payer, once in possession of
// the preimage, can decrypt.
type Server struct {
	cfg       *ServerConfig
	lndClient lnrpc.LightningClient
	router    *mux.Router

	// paymentMetadata maps a pay request id onto the metadata string its
	// invoice must commit to. Entries expire after MetadataExpiry.
	paymentMetadata *cache.Cache
	metadataMu      sync.Mutex
}

type ServerConfig struct {
	Protocol   string
	Host       string
	Port       int
	ListenAddr string

	MinSendable    lnwire.MilliSatoshi
	MaxSendable    lnwire.MilliSatoshi
	CommentAllowed uint32

	// Description is the text/plain metadata shown to payers.
	Description string

	// SuccessDescription and SuccessMessage make up the aes success
	// action; the message is what gets encrypted.
	SuccessDescription string
	SuccessMessage     string

	MetadataExpiry time.Duration
}

// NewServer creates a pay service using lnd to create invoices.
func NewServer(cfg *ServerConfig, lnd lnrpc.LightningClient) *Server {
	s := &Server{
		cfg:       cfg,
		lndClient: lnd,
		router:    mux.NewRouter(),
		paymentMetadata: cache.New(
			cfg.MetadataExpiry, 2*cfg.MetadataExpiry,
		),
	}

	s.router.HandleFunc("/pay", s.pay).Methods(http.MethodGet)
	s.router.HandleFunc("/invoice", s.invoice).Methods(http.MethodGet)

	return s
}

// Handler returns the http handler serving the pay endpoints.
func (s *Server) Handler() http.Handler {
	return s.router
}

// PayURL is the public URL of the static pay endpoint.
func (s *Server) PayURL() string {
	return fmt.Sprintf(
		"%s://%s:%d/pay", s.cfg.Protocol, s.cfg.Host, s.cfg.Port,
	)
}

// Run prints the service's LNURL and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.printHello(); err != nil {
		return err
	}

	info, err := s.lndClient.GetInfo(ctx, &lnrpc.GetInfoRequest{})
	if err != nil {
		return err
	}

	log.Infof("Connected to node with alias: %s", info.Alias)

	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	err = srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

func (s *Server) printHello() error {
	payCode := s.PayURL()

	payLNURL, err := EncodeURL(payCode)
	if err != nil {
		return err
	}
	payLNURL = strings.ToUpper(payLNURL)

	fmt.Printf(
		""+
			"=======================================\n"+
			"Welcome to LNURL!\n"+
			"Your static LNURL-pay code is: \n"+
			"- %s\n"+
			"- lightning:%s\n"+
			"- %s\n"+
			"=======================================\n",
		payLNURL, payLNURL, strings.Replace(
			payCode, s.cfg.Protocol, "lnurlp", 1,
		),
	)

	return nil
}

func (s *Server) pay(w http.ResponseWriter, r *http.Request) {
	var nonce [32]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	id := hex.EncodeToString(nonce[:10])
	meta, err := json.Marshal([][2]string{
		{"text/plain", fmt.Sprintf("%s (%s)", s.cfg.Description, id)},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.paymentMetadata.Set(id, string(meta), cache.DefaultExpiration)

	commentAllowed := s.cfg.CommentAllowed
	resp := &PayResponse{
		Callback: fmt.Sprintf(
			"%s://%s:%d/invoice?id=%s", s.cfg.Protocol,
			s.cfg.Host, s.cfg.Port, id,
		),
		MinSendable:    s.cfg.MinSendable,
		MaxSendable:    s.cfg.MaxSendable,
		Metadata:       string(meta),
		Tag:            TagPayRequest,
		CommentAllowed: &commentAllowed,
	}

	writeJSON(w, resp)
}

func (s *Server) invoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := r.Form.Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "expected 'id' field")
		return
	}

	milliSats, err := strconv.ParseUint(r.Form.Get("amount"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "expected 'amount' field")
		return
	}
	amt := lnwire.MilliSatoshi(milliSats)
	if amt < s.cfg.MinSendable || amt > s.cfg.MaxSendable {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("amount "+
			"must be between %d and %d msat",
			uint64(s.cfg.MinSendable), uint64(s.cfg.MaxSendable)))
		return
	}

	comment := r.Form.Get("comment")
	if utf8.RuneCountInString(comment) > int(s.cfg.CommentAllowed) {
		writeError(w, http.StatusBadRequest, "comment too long")
		return
	}

	s.metadataMu.Lock()
	meta, ok := s.paymentMetadata.Get(id)
	if !ok {
		s.metadataMu.Unlock()
		writeError(w, http.StatusBadRequest, "unknown or expired id")
		return
	}
	s.paymentMetadata.Delete(id)
	s.metadataMu.Unlock()

	var preimage lntypes.Preimage
	if _, err := rand.Read(preimage[:]); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	descHash := sha256.Sum256([]byte(meta.(string)))
	addResp, err := s.lndClient.AddInvoice(ctx, &lnrpc.Invoice{
		RPreimage:       preimage[:],
		ValueMsat:       int64(amt),
		DescriptionHash: descHash[:],
	})
	if err != nil {
		log.Errorf("Unable to add invoice: %v", err)
		writeError(w, http.StatusInternalServerError, "invoice error")
		return
	}

	if comment != "" {
		log.Infof("Invoice %v requested with comment: %s",
			preimage.Hash(), comment)
	}

	action, err := NewAESParams(
		s.cfg.SuccessDescription, s.cfg.SuccessMessage, preimage,
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	params := action.Params()

	writeJSON(w, &InvoiceResponse{
		PayRequest:          addResp.PaymentRequest,
		Routes:              []json.RawMessage{},
		SuccessActionParams: &params,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Unable to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	err := json.NewEncoder(w).Encode(&StatusResponse{
		Status: StatusError,
		Reason: reason,
	})
	if err != nil {
		log.Errorf("Unable to write response: %v", err)
	}
}
