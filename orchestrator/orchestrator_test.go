// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package orchestrator_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/paymentd/background"
	"github.com/bitmark-inc/paymentd/channel"
	"github.com/bitmark-inc/paymentd/counter"
	"github.com/bitmark-inc/paymentd/fault"
	"github.com/bitmark-inc/paymentd/fixtures"
	"github.com/bitmark-inc/paymentd/ledger"
	"github.com/bitmark-inc/paymentd/ledger/ledgertest"
	"github.com/bitmark-inc/paymentd/memo"
	"github.com/bitmark-inc/paymentd/model"
	"github.com/bitmark-inc/paymentd/orchestrator"
	"github.com/bitmark-inc/paymentd/queue"
	"github.com/bitmark-inc/paymentd/storage"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

var asset = ledger.Asset{Code: "KIN", Issuer: fixtures.AddressFour}

type testEnv struct {
	db     *storage.DB
	ledger *ledgertest.Ledger
	queue  *queue.Queue
	orch   *orchestrator.Orchestrator
}

func setup(t *testing.T) *testEnv {
	db, err := storage.OpenMemory()
	require.Nil(t, err, "storage open error")

	root := keypair.MustParseFull(fixtures.RootSeed)
	l := ledgertest.New(root.Address(), asset)

	pool, err := channel.New(&channel.Configuration{Maximum: 2, SleepMilliseconds: 5}, fixtures.RootSeed, l, db)
	require.Nil(t, err, "channel pool error")

	// channels are funded up front so injected failures hit the request
	addresses, err := pool.Addresses()
	require.Nil(t, err, "channel addresses error")
	for _, a := range addresses {
		l.AddAccount(a, 10, 0, false)
	}

	q, err := queue.New(&queue.Configuration{Workers: 2, RetryDelaySeconds: 1}, db)
	require.Nil(t, err, "queue error")

	cfg := &orchestrator.Configuration{
		LockWaitSeconds:           5,
		CallbackAttempts:          2,
		CallbackDelayMilliseconds: 1,
	}
	o := orchestrator.New(cfg, orchestrator.Resources{
		Store:              db,
		Ledger:             l,
		Channels:           pool,
		Queue:              q,
		WalletNativeAmount: 3,
	})

	return &testEnv{
		db:     db,
		ledger: l,
		queue:  q,
		orch:   o,
	}
}

// callbacks waiting in the queue
func (e *testEnv) callbacks(t *testing.T) []model.CallbackJob {
	keys, err := e.db.Keys("job:")
	require.Nil(t, err, "keys error")

	result := make([]model.CallbackJob, 0, len(keys))
	for _, key := range keys {
		data, err := e.db.Get(key)
		require.Nil(t, err, "get error")

		job := queue.Job{}
		require.Nil(t, json.Unmarshal(data, &job), "job decode error")
		if orchestrator.KindCallback != job.Kind {
			continue
		}
		cb := model.CallbackJob{}
		require.Nil(t, json.Unmarshal(job.Payload, &cb), "callback decode error")
		result = append(result, cb)
	}
	return result
}

func paymentRequest(id string) *model.PaymentRequest {
	return &model.PaymentRequest{
		Id:               id,
		AppId:            fixtures.AppId,
		RecipientAddress: fixtures.AddressOne,
		Amount:           5,
		Callback:         "http://example.com/cb",
	}
}

func TestPayOnce(t *testing.T) {
	e := setup(t)
	defer e.db.Close()

	e.ledger.AddAccount(fixtures.AddressOne, 10, 0, true)

	first, err := e.orch.Pay(context.Background(), paymentRequest("p1"))
	assert.Nil(t, err, "pay error")
	assert.Equal(t, "p1", first.Id, "wrong id")
	assert.Equal(t, e.ledger.RootAddress(), first.SenderAddress, "wrong sender")
	assert.Equal(t, int64(5), first.Amount, "wrong amount")

	second, err := e.orch.Pay(context.Background(), paymentRequest("p1"))
	assert.Nil(t, err, "second pay error")
	assert.Equal(t, first, second, "payments differ")

	assert.Equal(t, 1, e.ledger.Submissions(), "wrong submissions")
	assert.Equal(t, int64(5), e.ledger.Account(fixtures.AddressOne).AssetBalance, "wrong balance")

	tx, err := e.ledger.GetTransaction(context.Background(), first.TransactionId)
	assert.Nil(t, err, "transaction error")
	assert.Equal(t, memo.Create(fixtures.AppId, "p1"), tx.Memo, "wrong memo")

	stored, err := e.orch.GetPayment("p1")
	assert.Nil(t, err, "get payment error")
	assert.Equal(t, first.TransactionId, stored.TransactionId, "wrong stored payment")

	callbacks := e.callbacks(t)
	assert.Equal(t, 1, len(callbacks), "wrong callback count")
	assert.Equal(t, model.ObjectPayment, callbacks[0].Callback.Object, "wrong object")
	assert.Equal(t, model.StateSuccess, callbacks[0].Callback.State, "wrong state")
	assert.Equal(t, model.ActionSend, callbacks[0].Callback.Action, "wrong action")
	assert.Equal(t, "http://example.com/cb", callbacks[0].URL, "wrong url")
}

func TestPayParallel(t *testing.T) {
	e := setup(t)
	defer e.db.Close()

	e.ledger.AddAccount(fixtures.AddressOne, 10, 0, true)
	e.ledger.Delay = 30 * time.Millisecond

	var wg sync.WaitGroup
	results := make([]*model.Payment, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i += 1 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results[n], errs[n] = e.orch.Pay(context.Background(), paymentRequest("p1"))
		}(i)
	}
	wg.Wait()

	assert.Nil(t, errs[0], "first error")
	assert.Nil(t, errs[1], "second error")
	assert.Equal(t, 1, e.ledger.Submissions(), "paid twice")
	assert.Equal(t, results[0].TransactionId, results[1].TransactionId, "different transactions")
}

func TestPayRecipientErrors(t *testing.T) {
	e := setup(t)
	defer e.db.Close()

	// no account at all
	_, err := e.orch.Pay(context.Background(), paymentRequest("p1"))
	assert.True(t, fault.IsErrPermanent(err), "missing account not permanent")
	assert.True(t, errors.Is(err, fault.ErrAccountNotFound), "wrong error")

	// account without trustline
	e.ledger.AddAccount(fixtures.AddressOne, 10, 0, false)
	_, err = e.orch.Pay(context.Background(), paymentRequest("p2"))
	assert.True(t, fault.IsErrPermanent(err), "no trustline not permanent")
	assert.True(t, errors.Is(err, fault.ErrNoTrustline), "wrong error")

	assert.Equal(t, 0, e.ledger.Submissions(), "unexpected submission")

	callbacks := e.callbacks(t)
	assert.Equal(t, 2, len(callbacks), "wrong callback count")
	for _, cb := range callbacks {
		assert.Equal(t, model.StateFail, cb.Callback.State, "wrong state")

		failure := model.Failure{}
		assert.Nil(t, json.Unmarshal(cb.Callback.Value, &failure), "value decode error")
		assert.Equal(t, fixtures.AddressOne, failure.WalletAddress, "wrong address")
		assert.NotEqual(t, "", failure.Reason, "missing reason")
	}

	_, err = e.orch.GetPayment("p1")
	assert.Equal(t, fault.ErrPaymentNotFound, err, "failed payment stored")
}

func TestPayTransient(t *testing.T) {
	e := setup(t)
	defer e.db.Close()

	e.ledger.AddAccount(fixtures.AddressOne, 10, 0, true)
	e.ledger.FailNext(ledgertest.MethodSendPayment, fault.ErrLedgerUnavailable)

	_, err := e.orch.Pay(context.Background(), paymentRequest("p1"))
	assert.Equal(t, fault.ErrLedgerUnavailable, err, "wrong error")
	assert.False(t, fault.IsErrPermanent(err), "transient error marked permanent")
	assert.Equal(t, 0, len(e.callbacks(t)), "callback sent for transient error")

	// the retry succeeds
	payment, err := e.orch.Pay(context.Background(), paymentRequest("p1"))
	assert.Nil(t, err, "retry error")
	assert.NotEqual(t, "", payment.TransactionId, "missing transaction")
	assert.Equal(t, 1, e.ledger.Submissions(), "wrong submissions")
}

func TestPayPermanent(t *testing.T) {
	e := setup(t)
	defer e.db.Close()

	e.ledger.AddAccount(fixtures.AddressOne, 10, 0, true)
	rejected := fault.Permanent(errors.New("memo text can't be longer than 28 bytes"))
	e.ledger.FailNext(ledgertest.MethodSendPayment, rejected)

	_, err := e.orch.Pay(context.Background(), paymentRequest("p1"))
	assert.True(t, fault.IsErrPermanent(err), "error not permanent")

	callbacks := e.callbacks(t)
	require.Equal(t, 1, len(callbacks), "wrong callback count")
	assert.Equal(t, model.StateFail, callbacks[0].Callback.State, "wrong state")
	assert.Equal(t, model.ObjectPayment, callbacks[0].Callback.Object, "wrong object")

	failure := model.Failure{}
	assert.Nil(t, json.Unmarshal(callbacks[0].Callback.Value, &failure), "value decode error")
	assert.Equal(t, "p1", failure.Id, "wrong id")
	assert.Equal(t, rejected.Error(), failure.Reason, "wrong reason")

	_, err = e.orch.GetPayment("p1")
	assert.Equal(t, fault.ErrPaymentNotFound, err, "failed payment stored")
}

func TestPayLowBalance(t *testing.T) {
	e := setup(t)
	defer e.db.Close()

	e.ledger.AddAccount(fixtures.AddressOne, 10, 0, true)
	e.ledger.FailNext(ledgertest.MethodSendPayment, fault.ErrLowBalance)

	_, err := e.orch.Pay(context.Background(), paymentRequest("p1"))
	assert.Equal(t, fault.ErrInsufficientFunds, err, "wrong error")
	assert.True(t, fault.IsErrTransient(err), "low balance not transient")
	assert.False(t, fault.IsErrPermanent(err), "low balance marked permanent")
	assert.Equal(t, 0, len(e.callbacks(t)), "callback sent for low balance")
}

func TestEnqueuePayment(t *testing.T) {
	e := setup(t)
	defer e.db.Close()

	e.ledger.AddAccount(fixtures.AddressOne, 10, 0, true)

	bad := paymentRequest("p1")
	bad.Amount = 0
	err := e.orch.EnqueuePayment(bad)
	assert.Equal(t, fault.ErrInvalidAmount, err, "wrong error")

	err = e.orch.EnqueuePayment(paymentRequest("p1"))
	assert.Nil(t, err, "enqueue error")

	_, err = e.orch.Pay(context.Background(), paymentRequest("p1"))
	require.Nil(t, err, "pay error")

	err = e.orch.EnqueuePayment(paymentRequest("p1"))
	assert.Equal(t, fault.ErrPaymentExists, err, "wrong error")
}

func walletRequest() *model.WalletRequest {
	return &model.WalletRequest{
		Id:            "w1",
		AppId:         fixtures.AppId,
		WalletAddress: fixtures.AddressTwo,
		Callback:      "http://example.com/wallet",
	}
}

func TestCreateWallet(t *testing.T) {
	e := setup(t)
	defer e.db.Close()

	err := e.orch.CreateWallet(context.Background(), walletRequest())
	assert.Nil(t, err, "create error")

	account := e.ledger.Account(fixtures.AddressTwo)
	require.NotNil(t, account, "account not created")
	assert.Equal(t, int64(3), account.NativeBalance, "wrong starting balance")

	var hash string
	for _, r := range e.ledger.Records() {
		if fixtures.AddressTwo == r.To {
			hash = r.TransactionHash
		}
	}
	tx, err := e.ledger.GetTransaction(context.Background(), hash)
	assert.Nil(t, err, "transaction error")
	assert.Equal(t, memo.CreateWallet(fixtures.AppId), tx.Memo, "wrong memo")

	callbacks := e.callbacks(t)
	assert.Equal(t, 1, len(callbacks), "wrong callback count")
	assert.Equal(t, model.ObjectWallet, callbacks[0].Callback.Object, "wrong object")
	assert.Equal(t, model.StateSuccess, callbacks[0].Callback.State, "wrong state")
	assert.Equal(t, model.ActionCreate, callbacks[0].Callback.Action, "wrong action")

	wallet, err := e.orch.GetWallet(context.Background(), fixtures.AddressTwo)
	assert.Nil(t, err, "wallet error")
	assert.Equal(t, int64(3), wallet.NativeBalance, "wrong wallet balance")
}

func TestCreateWalletExists(t *testing.T) {
	e := setup(t)
	defer e.db.Close()

	e.ledger.AddAccount(fixtures.AddressTwo, 1, 0, false)
	creations := e.ledger.Creations()

	err := e.orch.CreateWallet(context.Background(), walletRequest())
	assert.Nil(t, err, "existing account should not be an error")
	assert.Equal(t, creations, e.ledger.Creations(), "account created")

	callbacks := e.callbacks(t)
	assert.Equal(t, 1, len(callbacks), "wrong callback count")
	assert.Equal(t, model.StateFail, callbacks[0].Callback.State, "wrong state")

	failure := model.Failure{}
	assert.Nil(t, json.Unmarshal(callbacks[0].Callback.Value, &failure), "value decode error")
	assert.Equal(t, fault.ErrAccountExists.Error(), failure.Reason, "wrong reason")
}

func TestCreateWalletErrors(t *testing.T) {
	e := setup(t)
	defer e.db.Close()

	e.ledger.FailNext(ledgertest.MethodCreateAccount, fault.ErrLedgerUnavailable)
	err := e.orch.CreateWallet(context.Background(), walletRequest())
	assert.Equal(t, fault.ErrLedgerUnavailable, err, "wrong error")
	assert.False(t, fault.IsErrPermanent(err), "transient marked permanent")

	e.ledger.FailNext(ledgertest.MethodCreateAccount, fault.ErrLowBalance)
	err = e.orch.CreateWallet(context.Background(), walletRequest())
	assert.True(t, fault.IsErrPermanent(err), "low balance not permanent")

	// each failure is reported
	assert.Equal(t, 2, len(e.callbacks(t)), "wrong callback count")
	assert.Nil(t, e.ledger.Account(fixtures.AddressTwo), "account created")
}

func TestGetWalletMissing(t *testing.T) {
	e := setup(t)
	defer e.db.Close()

	_, err := e.orch.GetWallet(context.Background(), fixtures.AddressThree)
	assert.Equal(t, fault.ErrWalletNotFound, err, "wrong error")

	_, err = e.orch.GetWallet(context.Background(), "junk")
	assert.Equal(t, fault.ErrInvalidAddress, err, "wrong error")
}

func TestWalletPayments(t *testing.T) {
	e := setup(t)
	defer e.db.Close()

	e.ledger.AddAccount(fixtures.AddressOne, 10, 0, true)

	_, err := e.orch.Pay(context.Background(), paymentRequest("p1"))
	require.Nil(t, err, "pay error")

	// not ours: bad memo and foreign asset
	e.ledger.AddPayment(fixtures.AddressThree, fixtures.AddressOne, 7, "hello")
	e.ledger.AddForeignPayment(fixtures.AddressThree, fixtures.AddressOne, 9, memo.Create("x", "y"), ledger.Asset{Code: "XYZ", Issuer: fixtures.AddressThree})

	payments, err := e.orch.WalletPayments(context.Background(), fixtures.AddressOne, 10)
	assert.Nil(t, err, "wallet payments error")
	assert.Equal(t, 1, len(payments), "wrong payment count")
	assert.Equal(t, "p1", payments[0].Id, "wrong payment")
}

func TestWalletPaymentsNewest(t *testing.T) {
	e := setup(t)
	defer e.db.Close()

	e.ledger.AddAccount(fixtures.AddressOne, 10, 0, true)

	// more than one page of history, with other operations mixed in
	total := 120
	for i := 0; i < total; i += 1 {
		e.ledger.AddPayment(fixtures.AddressThree, fixtures.AddressOne, int64(i+1), memo.Create("app", fmt.Sprintf("p%d", i)))
		if 0 == i%10 {
			e.ledger.AddPayment(fixtures.AddressThree, fixtures.AddressOne, 1, "hello")
		}
	}

	payments, err := e.orch.WalletPayments(context.Background(), fixtures.AddressOne, 3)
	require.Nil(t, err, "wallet payments error")
	require.Equal(t, 3, len(payments), "wrong payment count")
	assert.Equal(t, "p117", payments[0].Id, "wrong oldest payment")
	assert.Equal(t, "p118", payments[1].Id, "wrong middle payment")
	assert.Equal(t, "p119", payments[2].Id, "wrong newest payment")
	assert.Equal(t, int64(120), payments[2].Amount, "wrong amount")

	payments, err = e.orch.WalletPayments(context.Background(), fixtures.AddressOne, 100)
	require.Nil(t, err, "wallet payments error")
	require.Equal(t, 100, len(payments), "wrong payment count")
	assert.Equal(t, "p20", payments[0].Id, "wrong oldest payment")
	assert.Equal(t, "p119", payments[99].Id, "wrong newest payment")

	_, err = e.orch.WalletPayments(context.Background(), fixtures.AddressTwo, 3)
	assert.Equal(t, fault.ErrWalletNotFound, err, "missing wallet listed")
}

func TestDeliverCallback(t *testing.T) {
	e := setup(t)
	defer e.db.Close()

	var (
		mutex  sync.Mutex
		bodies []model.Callback
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		cb := model.Callback{}
		_ = json.Unmarshal(data, &cb)
		mutex.Lock()
		bodies = append(bodies, cb)
		mutex.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	job, err := model.NewCallbackJob(server.URL, fixtures.AppId, model.ObjectPayment, model.StateSuccess, model.ActionReceive, map[string]string{"id": "p1"})
	require.Nil(t, err, "job error")

	err = e.orch.DeliverCallback(context.Background(), job)
	assert.Nil(t, err, "deliver error")
	assert.Equal(t, 1, len(bodies), "wrong deliveries")
	assert.Equal(t, model.ActionReceive, bodies[0].Action, "wrong action")
	assert.JSONEq(t, `{"id":"p1"}`, string(bodies[0].Value), "wrong value")
}

func TestDeliverCallbackRejected(t *testing.T) {
	e := setup(t)
	defer e.db.Close()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls += 1
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	before := counter.Named(counter.CallbackFailed).Uint64()

	job, _ := model.NewCallbackJob(server.URL, fixtures.AppId, model.ObjectWallet, model.StateFail, model.ActionCreate, nil)
	err := e.orch.DeliverCallback(context.Background(), job)
	assert.True(t, fault.IsErrTransient(err), "rejection not transient")
	assert.Equal(t, 2, calls, "wrong attempts")
	assert.Equal(t, before+1, counter.Named(counter.CallbackFailed).Uint64(), "not metered")
}

func TestDeliverCallbackMalformedURL(t *testing.T) {
	e := setup(t)
	defer e.db.Close()

	job, _ := model.NewCallbackJob("http://bad host/cb", fixtures.AppId, model.ObjectPayment, model.StateSuccess, model.ActionSend, nil)
	err := e.orch.DeliverCallback(context.Background(), job)
	assert.True(t, fault.IsErrPermanent(err), "malformed url retried")
	assert.True(t, errors.Is(err, fault.ErrWebhookRejected), "wrong error")
}

// request queued through to callback delivery
func TestEndToEnd(t *testing.T) {
	e := setup(t)
	defer e.db.Close()

	e.ledger.AddAccount(fixtures.AddressOne, 10, 0, true)

	received := make(chan model.Callback, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cb := model.Callback{}
		_ = json.NewDecoder(r.Body).Decode(&cb)
		received <- cb
	}))
	defer server.Close()

	processes := background.Start(background.Processes{e.queue}, nil)
	defer processes.Stop()

	request := paymentRequest("e2e")
	request.Callback = server.URL
	err := e.orch.EnqueuePayment(request)
	require.Nil(t, err, "enqueue error")

	select {
	case cb := <-received:
		assert.Equal(t, model.StateSuccess, cb.State, "wrong state")
		payment := model.Payment{}
		assert.Nil(t, json.Unmarshal(cb.Value, &payment), "value decode error")
		assert.Equal(t, "e2e", payment.Id, "wrong payment")
	case <-time.After(5 * time.Second):
		t.Fatal("callback not delivered")
	}

	assert.Eventually(t, func() bool { return 0 == e.queue.Stored() }, 2*time.Second, 10*time.Millisecond, "jobs left behind")
	assert.Equal(t, 1, e.ledger.Submissions(), "wrong submissions")
}
