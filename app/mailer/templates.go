package mailer

import (
	htmltemplate "html/template"
	texttemplate "text/template"
)

var receiptText = texttemplate.Must(texttemplate.New("receipt.txt").Parse(`PARKING PAYMENT RECEIPT
=======================

PAYMENT SUCCESSFUL

VEHICLE INFORMATION
-------------------
License Plate: {{.LicensePlate}}

PARKING DETAILS
---------------
Duration: {{.Duration}}
Amount Paid: ${{.Amount}} {{.Currency}}
Payment Date: {{.PaymentDate}}
Valid Until: {{.ExpiresAt}}

TRANSACTION INFORMATION
-----------------------
Transaction ID: {{.TransactionID}}
Payment Method: {{.PaymentMethod}}

TOTAL AMOUNT: ${{.Amount}} {{.Currency}}

---

This is an automated receipt. Your parking session has been activated.
Keep this receipt for your records.
`))

var receiptHTML = htmltemplate.Must(htmltemplate.New("receipt.html").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f5f7fa; margin: 0; padding: 20px; }
.container { max-width: 600px; margin: 0 auto; background-color: #fff; border-radius: 8px; overflow: hidden; }
.header { background: #1e3c72; color: #fff; padding: 30px; text-align: center; }
.content { padding: 30px; }
.section { margin-bottom: 25px; border-bottom: 1px solid #e0e6ed; padding-bottom: 20px; }
.section-title { font-size: 0.9rem; color: #999; text-transform: uppercase; margin-bottom: 12px; font-weight: 600; }
.plate { background: #ffd700; border: 3px solid #333; border-radius: 6px; padding: 15px; text-align: center; font-size: 2rem; font-weight: 700; letter-spacing: 2px; }
.row { display: flex; justify-content: space-between; padding: 6px 0; }
.label { color: #666; }
.value { font-weight: 600; }
.total { font-size: 1.25rem; font-weight: 700; color: #1e3c72; }
.footer { background: #f5f7fa; padding: 20px; text-align: center; font-size: 0.85rem; color: #666; }
</style>
</head>
<body>
<div class="container">
  <div class="header">
    <h1>{{.Brand}}</h1>
    <p>Payment Receipt</p>
  </div>
  <div class="content">
    <div class="section">
      <div class="section-title">Vehicle Information</div>
      <div class="plate">{{.LicensePlate}}</div>
    </div>
    <div class="section">
      <div class="section-title">Parking Details</div>
      <div class="row"><span class="label">Duration</span><span class="value">{{.Duration}}</span></div>
      <div class="row"><span class="label">Amount Paid</span><span class="value">${{.Amount}} {{.Currency}}</span></div>
      <div class="row"><span class="label">Payment Date</span><span class="value">{{.PaymentDate}}</span></div>
      <div class="row"><span class="label">Valid Until</span><span class="value">{{.ExpiresAt}}</span></div>
    </div>
    <div class="section">
      <div class="section-title">Transaction Information</div>
      <div class="row"><span class="label">Transaction ID</span><span class="value">{{.TransactionID}}</span></div>
      <div class="row"><span class="label">Payment Method</span><span class="value">{{.PaymentMethod}}</span></div>
    </div>
    <div class="row total"><span>Total Amount</span><span>${{.Amount}} {{.Currency}}</span></div>
  </div>
  <div class="footer">
    <p>This is an automated receipt. Your parking session has been activated.</p>
    <p>Keep this receipt for your records.</p>
  </div>
</div>
</body>
</html>
`))
