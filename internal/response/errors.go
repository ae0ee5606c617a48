package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrForbidden          ErrCode = "FORBIDDEN"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"

	// ─── Sync-specific ─────────────────────────────────────────────────
	ErrSyncInProgress   ErrCode = "SYNC_IN_PROGRESS"
	ErrSyncAuthFailed   ErrCode = "SYNC_AUTH_FAILED"
	ErrSyncFetchFailed  ErrCode = "SYNC_FETCH_FAILED"
	ErrSyncEmptyDataset ErrCode = "SYNC_EMPTY_DATASET"
	ErrSyncBatchFailed  ErrCode = "SYNC_BATCH_FAILED"

	// ─── Assignment-specific ───────────────────────────────────────────
	ErrNotCorroborated ErrCode = "ASSIGNMENT_NOT_CORROBORATED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email atau kata sandi salah."
	case ErrTokenRequired:
		return "Token autentikasi diperlukan."
	case ErrTokenInvalid:
		return "Token autentikasi tidak valid."
	case ErrTokenExpired:
		return "Token autentikasi telah kedaluwarsa."
	case ErrForbidden:
		return "Anda tidak memiliki izin untuk mengakses sumber daya ini."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validasi gagal. Silakan periksa masukan Anda."
	case ErrInvalidID:
		return "Format ID tidak valid."
	case ErrInvalidPayload:
		return "Payload permintaan tidak valid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Sumber daya tidak ditemukan."
	case ErrConflict:
		return "Sumber daya sudah ada."
	case ErrDependencyExists:
		return "Data tidak dapat dihapus karena masih digunakan oleh data lain."

	// ─── Sync-specific ─────────────────────────────────────────────────
	case ErrSyncInProgress:
		return "Sinkronisasi lain sedang berjalan. Silakan tunggu hingga selesai."
	case ErrSyncAuthFailed:
		return "Autentikasi ke Metabase gagal. Periksa kredensial sinkronisasi."
	case ErrSyncFetchFailed:
		return "Pengambilan data dari Metabase gagal."
	case ErrSyncEmptyDataset:
		return "Dataset eksternal kosong. Sinkronisasi dibatalkan sebelum data lokal dihapus."
	case ErrSyncBatchFailed:
		return "Penyimpanan batch data sesi gagal. Sinkronisasi dihentikan."

	// ─── Assignment-specific ───────────────────────────────────────────
	case ErrNotCorroborated:
		return "Perubahan ditolak: slot wajib tidak terkonfirmasi oleh sesi terpantau. Jalankan sinkronisasi atau paksa perubahan."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Terjadi kesalahan server internal."
	default:
		return "Terjadi kesalahan yang tidak terduga."
	}
}
