/**
 * Copyright 2025-present Grão Investimentos Ltda.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

// ChargeParams is the normalized charge request sent to the payment
// service provider. Amount is in minor units (centavos).
type ChargeParams struct {
	AmountCents   int64
	Method        string // "pix" or "credit_card"
	CustomerName  string
	CustomerEmail string
	CustomerCpf   string
	Card          *CardDetails
	PostbackUrl   string
	ExternalRef   string // local transaction id, echoed back on webhooks
}

// ChargeResult is the provider's answer to a charge request. PixQrcode is
// only present for PIX charges.
type ChargeResult struct {
	GatewayId string
	Status    string
	PixQrcode string
}

// GatewayStatus is the provider's current view of a charge.
type GatewayStatus struct {
	Status string
}
