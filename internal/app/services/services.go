package services

// Services defined in this package:
// - AuthService: Reviewer login against the configured account
// - RegistrationService: Application submission, review, document
//   verification, guardian lookup and audit trail
// - InvoiceService: External invoice amount reads with local fallback and
//   payment posting over the SSH/MySQL bridge
