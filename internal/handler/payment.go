package handler

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"angohost-storefront/internal/cart"
	"angohost-storefront/internal/dto"
	"angohost-storefront/internal/middleware"
	"angohost-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	carts           *cart.Store
	checkoutService service.CheckoutService
	bootstrapper    *service.SessionBootstrapper
	confirmations   *service.ConfirmationService
}

func NewPaymentHandler(
	carts *cart.Store,
	checkoutService service.CheckoutService,
	bootstrapper *service.SessionBootstrapper,
	confirmations *service.ConfirmationService,
) *PaymentHandler {
	return &PaymentHandler{
		carts:           carts,
		checkoutService: checkoutService,
		bootstrapper:    bootstrapper,
		confirmations:   confirmations,
	}
}

// RetrySession re-requests a frame session for an existing order after a
// bootstrap failure.
func (h *PaymentHandler) RetrySession(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SessionRequest
	if err := c.Bind(&req); err != nil || req.Reference == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing order reference")
	}

	session, err := h.checkoutService.RetrySession(ctx, middleware.UserID(c), req.Reference)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, session)
}

// Status reports the bootstrap state, watcher liveness and payment state
// for a reference. The payment frame page polls this while open.
func (h *PaymentHandler) Status(c echo.Context) error {
	ctx := c.Request().Context()

	reference := c.QueryParam("reference")
	if reference == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing order reference")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"session":  h.bootstrapper.Session(reference),
		"watching": h.confirmations.Active(reference),
		"payment":  h.carts.Payment(ctx, middleware.UserID(c)),
	})
}

// Callback is the push confirmation channel: the gateway (or the frame
// page relaying its postMessage) POSTs a JSON completion payload here.
// Malformed or non-success payloads are acknowledged and dropped.
func (h *PaymentHandler) Callback(c echo.Context) error {
	reference := c.QueryParam("reference")
	if reference == "" {
		return c.NoContent(http.StatusBadRequest)
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	if err := h.confirmations.Signal(reference, body); err != nil {
		if errors.Is(err, service.ErrNoActiveSession) {
			return c.NoContent(http.StatusNotFound)
		}
		return fmt.Errorf("handle payment callback: %w", err)
	}

	return c.NoContent(http.StatusOK)
}

func (h *PaymentHandler) ConfirmManually(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SessionRequest
	if err := c.Bind(&req); err != nil || req.Reference == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing order reference")
	}

	transactionID, err := h.checkoutService.ConfirmManually(ctx, middleware.UserID(c), req.Reference)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveSession) {
			return echo.NewHTTPError(http.StatusNotFound, "no pending payment for reference")
		}
		return err
	}

	return c.JSON(http.StatusOK, &dto.ManualConfirmResponse{
		TransactionID: transactionID,
		Status:        "completed",
	})
}

// Cancel handles a user-initiated frame close. Cancellation is a normal
// outcome: the client goes back to method selection.
func (h *PaymentHandler) Cancel(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SessionRequest
	if err := c.Bind(&req); err != nil || req.Reference == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing order reference")
	}

	err := h.checkoutService.CancelPayment(ctx, middleware.UserID(c), req.Reference)
	if err != nil && !errors.Is(err, service.ErrPaymentCancelled) {
		if errors.Is(err, service.ErrNoActiveSession) {
			return echo.NewHTTPError(http.StatusNotFound, "no pending payment for reference")
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":   "cancelled",
		"redirect": "/checkout/metodo",
	})
}

var frameTemplate = template.Must(template.New("frame").Parse(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>Pagamento Multicaixa Express</title>
	<style>
		body { font-family: Arial, sans-serif; text-align: center; margin: 0; }
		iframe { width: 100%; height: 620px; border: none; }
		.actions { padding: 12px; }
		#load-error { display: none; color: #b00020; }
	</style>
</head>
<body>
	<iframe id="payment-frame" src="{{.FrameURL}}" sandbox="allow-scripts allow-forms allow-same-origin"></iframe>
	<p id="load-error">Não foi possível carregar o pagamento. <a href="#" onclick="retryFrame(); return false;">Tentar novamente</a></p>
	<div class="actions">
		<button onclick="cancelPayment()">Cancelar</button>
	</div>

	<script>
		const reference = {{.Reference}};
		const frame = document.getElementById("payment-frame");

		frame.addEventListener("error", function () {
			document.getElementById("load-error").style.display = "block";
		});

		function retryFrame() {
			// same session URL, no new session request
			document.getElementById("load-error").style.display = "none";
			frame.src = frame.src;
		}

		window.addEventListener("message", function (event) {
			// relay the frame's completion message to the callback channel
			fetch("/api/payments/callback?reference=" + encodeURIComponent(reference), {
				method: "POST",
				headers: { "Content-Type": "application/json" },
				body: typeof event.data === "string" ? event.data : JSON.stringify(event.data)
			});
		});

		function cancelPayment() {
			fetch("/api/payments/cancel", {
				method: "POST",
				headers: { "Content-Type": "application/json" },
				body: JSON.stringify({ reference: reference })
			}).then(function () {
				window.location.href = "/checkout/metodo";
			});
		}
	</script>
</body>
</html>
`))

// Frame renders the page hosting the embedded gateway frame for a ready
// session.
func (h *PaymentHandler) Frame(c echo.Context) error {
	reference := c.QueryParam("reference")
	if reference == "" {
		return c.String(http.StatusBadRequest, "missing order reference")
	}

	session := h.bootstrapper.Session(reference)
	if session.State != service.SessionReady {
		return c.String(http.StatusConflict, "payment session is not ready")
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return frameTemplate.Execute(c.Response(), map[string]string{
		"FrameURL":  session.FrameURL,
		"Reference": reference,
	})
}

// Success is the landing page after a confirmed payment.
func (h *PaymentHandler) Success(c echo.Context) error {
	html := `
	<!DOCTYPE html>
	<html>
	<head>
		<meta charset="utf-8">
		<title>Pagamento concluído</title>
		<style>
			body {
				font-family: Arial, sans-serif;
				text-align: center;
				margin-top: 80px;
			}
			.countdown {
				font-size: 24px;
				font-weight: bold;
			}
		</style>
	</head>
	<body>
		<h2>Pagamento concluído</h2>
		<p>A sua encomenda foi registada e será aprovisionada em breve.</p>
		<p>A redirecionar para o painel em <span class="countdown" id="countdown">10</span> segundos…</p>

		<script>
			let seconds = 10;
			const el = document.getElementById("countdown");

			const timer = setInterval(function () {
				seconds--;
				el.textContent = seconds;

				if (seconds <= 0) {
					clearInterval(timer);
					window.location.href = "/painel";
				}
			}, 1000);
		</script>
	</body>
	</html>
	`

	return c.HTML(http.StatusOK, html)
}
