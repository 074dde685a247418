package seed

import (
	"time"

	"github.com/xiaot623/decision-timeline/internal/domain"
)

type stepSpec struct {
	stepType domain.StepType
	content  string
	metadata string
}

type scenario struct {
	label       string
	inputData   string
	systemState string
	reasoning   string
	decision    string
	confidence  float64
	source      domain.Source
	outcome     string
	outcomeData string
	tags        []string
	// spacing separates consecutive step timestamps.
	spacing time.Duration
	steps   []stepSpec
}

var refundApproval = scenario{
	label:       "refund approval",
	inputData:   `{"request_type":"refund","user_id":"user_12345","amount":79.99,"reason":"Product not as described"}`,
	systemState: `{"user_tier":"premium","account_age_days":456,"previous_refunds":1,"total_spend":2450.00}`,
	reasoning:   "User is premium tier with excellent history. Amount $79.99 is within auto-approval limit of $100. Previous refund count (1) is acceptable.",
	decision:    "approve_refund",
	confidence:  0.95,
	source:      domain.SourceRule,
	outcome:     "Refund processed successfully",
	tags:        []string{"refund", "auto_approved", "low_value"},
	spacing:     time.Second,
	steps: []stepSpec{
		{domain.StepTypeInput, "Refund request received: $79.99 for order #ORD-8821", `{"order_id":"ORD-8821"}`},
		{domain.StepTypeReasoning, "Checking user tier and account status...", `{"rule":"refund_eligibility_check"}`},
		{domain.StepTypeReasoning, "User is premium tier with 456-day account age. Previous refunds: 1. Total lifetime spend: $2,450.00", `{"user_tier":"premium","risk_score":"low"}`},
		{domain.StepTypeDecision, "Decision: Approve refund automatically", `{"confidence":0.95,"source":"rule"}`},
		{domain.StepTypeAction, "Processing refund to original payment method", `{"payment_method":"Visa ending in 1234"}`},
		{domain.StepTypeOutcome, "Refund processed successfully. Transaction ID: TXN-REF-9821", `{"transaction_id":"TXN-REF-9821","processing_time_ms":234}`},
	},
}

var refundRejection = scenario{
	label:       "refund rejection",
	inputData:   `{"request_type":"refund","user_id":"user_67890","amount":249.99,"reason":"Changed my mind"}`,
	systemState: `{"user_tier":"standard","account_age_days":45,"previous_refunds":3,"total_spend":310.00}`,
	reasoning:   "User is standard tier with high refund rate (3 previous refunds). Amount $249.99 exceeds auto-approval limit for standard users ($50). Account age is only 45 days.",
	decision:    "reject_refund_auto_review",
	confidence:  0.88,
	source:      domain.SourceRule,
	outcome:     "Refund rejected - sent to manual review queue",
	tags:        []string{"refund", "rejected", "high_value"},
	spacing:     2 * time.Second,
	steps: []stepSpec{
		{domain.StepTypeInput, "Refund request received: $249.99 for order #ORD-3341", `{"order_id":"ORD-3341"}`},
		{domain.StepTypeReasoning, "Checking user tier and refund history...", `{"rule":"refund_eligibility_check"}`},
		{domain.StepTypeReasoning, "Risk factors detected: 3 previous refunds, account age 45 days, amount exceeds standard tier limit", `{"risk_score":"high","refund_rate":0.75}`},
		{domain.StepTypeDecision, "Decision: Reject automatic refund - requires review", `{"confidence":0.88,"source":"rule","reason":"exceeds_limits"}`},
		{domain.StepTypeAction, "Adding to manual review queue with priority: normal", `{"queue":"refund_review","priority":"normal"}`},
		{domain.StepTypeOutcome, "Request queued for human review. Estimated review time: 24-48 hours", `{"queue_position":12}`},
	},
}

var supportEscalation = scenario{
	label:       "support escalation",
	inputData:   `{"request_type":"support_ticket","user_id":"user_44321","message":"I need to speak with your legal department about privacy concerns","category":"account_issue"}`,
	systemState: `{"user_tier":"premium","account_status":"active","previous_tickets":2}`,
	reasoning:   "Message contains sensitive keyword 'legal' requiring immediate human escalation per compliance policy.",
	decision:    "escalate_to_human_urgent",
	confidence:  0.98,
	source:      domain.SourceRule,
	outcome:     "Escalated to senior support agent",
	tags:        []string{"support", "escalated", "legal", "urgent"},
	spacing:     time.Second,
	steps: []stepSpec{
		{domain.StepTypeInput, "Support ticket received: Category=account_issue", `{"ticket_id":"TKT-9921"}`},
		{domain.StepTypeReasoning, "Analyzing message content for keywords and sentiment...", `{"sentiment":"neutral","language":"en"}`},
		{domain.StepTypeReasoning, "ALERT: Sensitive keyword detected: 'legal'. Policy requires immediate escalation.", `{"matched_keywords":["legal"],"policy":"compliance_escalation"}`},
		{domain.StepTypeDecision, "Decision: Escalate to human agent (URGENT priority)", `{"confidence":0.98,"source":"rule","priority":"urgent"}`},
		{domain.StepTypeAction, "Routing to senior support team", `{"team":"senior_support","agent_available":true}`},
		{domain.StepTypeOutcome, "Ticket assigned to Agent Sarah Chen (available)", `{"agent_id":"agent_sarah_chen","response_time_target":"15_minutes"}`},
	},
}

var manualReview = scenario{
	label:       "manual review",
	inputData:   `{"request_type":"account_closure","user_id":"user_99887","reason":"Moving to competitor"}`,
	systemState: `{"user_tier":"enterprise","contract_value":50000.00,"contract_end_date":"2026-06-30"}`,
	reasoning:   "Enterprise account with active contract. No automatic decision rule exists for mid-contract cancellations. Requires human negotiation.",
	decision:    "manual_review_required",
	confidence:  0.50,
	source:      domain.SourceManual,
	outcome:     "Pending manual review",
	tags:        []string{"account_management", "enterprise", "manual_review"},
	spacing:     3 * time.Second,
	steps: []stepSpec{
		{domain.StepTypeInput, "Account closure request: Enterprise account (Contract value: $50,000)", `{"contract_id":"CNT-2024-E-0892"}`},
		{domain.StepTypeReasoning, "Checking account status and contract terms...", `{}`},
		{domain.StepTypeReasoning, "Contract is active until 2026-06-30. Early termination clause requires approval.", `{"contract_status":"active","early_termination_penalty":15000.00}`},
		{domain.StepTypeDecision, "Decision: Manual review required (No automatic rule applies)", `{"confidence":0.50,"source":"manual","reason":"enterprise_contract"}`},
		{domain.StepTypeAction, "Assigning to account management team", `{"team":"enterprise_accounts","priority":"high"}`},
		{domain.StepTypeOutcome, "Pending review by Account Manager", `{"assigned_to":"Jennifer Park","follow_up_required":true}`},
	},
}

var contentModeration = scenario{
	label:       "content moderation",
	inputData:   `{"content_type":"user_comment","content_id":"cmt_445566","text":"Check out this amazing deal at example-spam-site.com/offer"}`,
	systemState: `{"user_reputation":45,"account_age_days":2,"previous_violations":0}`,
	reasoning:   "LLM detected promotional content with external link. New account with low reputation score. Content classified as spam with 89% confidence.",
	decision:    "remove_content",
	confidence:  0.89,
	source:      domain.SourceHybrid,
	outcome:     "Content removed and user notified",
	tags:        []string{"moderation", "spam", "automated"},
	spacing:     500 * time.Millisecond,
	steps: []stepSpec{
		{domain.StepTypeInput, "New comment posted by user_77123", `{"content_id":"cmt_445566","length":67}`},
		{domain.StepTypeReasoning, "Running content analysis (LLM + rules)...", `{"model":"gpt-4-mini","rule_engine":"v2.1"}`},
		{domain.StepTypeReasoning, "LLM classification: Spam (89% confidence). Contains promotional link. Account age: 2 days.", `{"spam_score":0.89,"promotional_link":true,"risk_level":"medium"}`},
		{domain.StepTypeDecision, "Decision: Remove content automatically", `{"confidence":0.89,"source":"hybrid","violation_type":"spam"}`},
		{domain.StepTypeAction, "Removing content and sending notification to user", `{"notification_sent":true,"appeal_available":true}`},
		{domain.StepTypeOutcome, "Content removed. User can appeal within 7 days.", `{"appeal_deadline":"2026-01-27","strike_count":1}`},
	},
}

var loanApproval = scenario{
	label:       "loan approval",
	inputData:   `{"request_type":"personal_loan","amount":15000.00,"term_months":36,"applicant_id":"app_33221"}`,
	systemState: `{"credit_score":720,"income_annual":65000.00,"debt_to_income":0.28,"employment_years":4}`,
	reasoning:   "Credit score (720) exceeds minimum threshold (680). Debt-to-income ratio (28%) is healthy. Stable employment (4 years). LLM analysis of application documents shows consistent income history. Risk assessment: Low.",
	decision:    "approve_loan",
	confidence:  0.91,
	source:      domain.SourceHybrid,
	outcome:     "Loan approved with interest rate 6.5%",
	outcomeData: `{"interest_rate":0.065,"monthly_payment":458.72,"total_repayment":16514.00}`,
	tags:        []string{"loan", "approved", "personal_loan"},
	spacing:     2 * time.Second,
	steps: []stepSpec{
		{domain.StepTypeInput, "Loan application received: $15,000 for 36 months", `{"application_id":"LN-2026-00892"}`},
		{domain.StepTypeReasoning, "Performing credit check and income verification...", `{"credit_bureau":"Experian","income_verified":true}`},
		{domain.StepTypeReasoning, "Credit score: 720 (Good). DTI: 28% (Healthy). Employment: Stable (4 years).", `{"credit_tier":"good","risk_category":"low"}`},
		{domain.StepTypeReasoning, "LLM analyzing supporting documents (pay stubs, tax returns)...", `{"model":"gpt-4","documents_analyzed":5}`},
		{domain.StepTypeReasoning, "Document analysis: Income consistent, no red flags detected.", `{"anomaly_score":0.05,"fraud_risk":"very_low"}`},
		{domain.StepTypeDecision, "Decision: Approve loan at standard rate (6.5% APR)", `{"confidence":0.91,"source":"hybrid","rate_tier":"standard"}`},
		{domain.StepTypeAction, "Generating loan agreement and notification", `{"agreement_id":"AGR-2026-00892"}`},
		{domain.StepTypeOutcome, "Loan approved. Funds available in 2-3 business days.", `{"disbursement_method":"direct_deposit","estimated_date":"2026-01-23"}`},
	},
}
