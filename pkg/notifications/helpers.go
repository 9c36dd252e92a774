package notifications

import "fmt"

// Success records a success notification. Together with Info, Warning and
// Error it satisfies the notifier collaborator contract of the upload
// orchestrator.
func (st *Store) Success(title, message string) {
	st.Add(Notification{Type: TypeSuccess, Title: title, Message: message})
}

// Info records an informational notification.
func (st *Store) Info(title, message string) {
	st.Add(Notification{Type: TypeInfo, Title: title, Message: message})
}

// Warning records a warning notification.
func (st *Store) Warning(title, message string) {
	st.Add(Notification{Type: TypeWarning, Title: title, Message: message})
}

// Error records an error notification.
func (st *Store) Error(title, message string) {
	st.Add(Notification{Type: TypeError, Title: title, Message: message})
}

// UploadComplete records a successful file upload.
func (st *Store) UploadComplete(filename string) {
	st.Add(Notification{
		Type:     TypeSuccess,
		Category: CategorySystem,
		Title:    "Upload Complete",
		Message:  fmt.Sprintf("%s has been uploaded successfully", filename),
	})
}

// UploadFailed records a failed file upload with its human-readable reason.
func (st *Store) UploadFailed(filename, reason string) {
	st.Add(Notification{
		Type:     TypeError,
		Category: CategorySystem,
		Title:    "Upload Failed",
		Message:  fmt.Sprintf("Failed to upload %s: %s", filename, reason),
	})
}

// ProofGenerated records a completed proof generation.
func (st *Store) ProofGenerated(proofID string) {
	st.Add(Notification{
		Type:     TypeSuccess,
		Category: CategoryProof,
		Title:    "Proof Generated Successfully!",
		Message:  fmt.Sprintf("Your proof %s is ready for download.", proofID),
	})
}

// ProofFailed records a failed proof generation.
func (st *Store) ProofFailed(reason string) {
	st.Add(Notification{
		Type:     TypeError,
		Category: CategoryProof,
		Title:    "Proof Generation Failed",
		Message:  reason,
	})
}

// QuizCompleted records a passed quiz with its score.
func (st *Store) QuizCompleted(score, totalQuestions, xpEarned int) {
	pct := 0
	if totalQuestions > 0 {
		pct = score * 100 / totalQuestions
	}
	st.Add(Notification{
		Type:     TypeSuccess,
		Category: CategoryQuiz,
		Title:    "Quiz Completed!",
		Message: fmt.Sprintf("You scored %d/%d (%d%%) and earned %d XP",
			score, totalQuestions, pct, xpEarned),
	})
}

// AchievementUnlocked records an unlocked achievement.
func (st *Store) AchievementUnlocked(title, description string) {
	st.Add(Notification{
		Type:     TypeSuccess,
		Category: CategoryAchievement,
		Title:    "Achievement Unlocked!",
		Message:  fmt.Sprintf("%s: %s", title, description),
	})
}

// ConnectionLost records a dropped realtime connection.
func (st *Store) ConnectionLost() {
	st.Add(Notification{
		Type:     TypeWarning,
		Category: CategorySystem,
		Title:    "Connection Lost",
		Message:  "Reconnecting to server...",
	})
}

// ConnectionRestored records a recovered realtime connection.
func (st *Store) ConnectionRestored() {
	st.Add(Notification{
		Type:     TypeSuccess,
		Category: CategorySystem,
		Title:    "Connection Restored",
		Message:  "You are back online!",
	})
}
