package flow

import "github.com/terra-agro/terrabot/core/state"

// Conversation states. Quick shift reports use list messages, detailed
// reports use paginated buttons; both converge on the reports table.
const (
	StateWaitingName state.State = "waiting_name"

	StateSelectWorkType state.State = "select_work_type"
	StateSelectShift    state.State = "select_shift"
	StateSelectHours    state.State = "select_hours"
	StateConfirmSave    state.State = "confirm_save"

	StatePickWorkGroup state.State = "pick_work_group"
	StatePickActivity  state.State = "pick_activity"
	StatePickLocGroup  state.State = "pick_loc_group"
	StatePickLocation  state.State = "pick_location"
	StatePickDate      state.State = "pick_date"
	StatePickHours     state.State = "pick_hours"

	StateViewingEdit state.State = "viewing_edit"
	StateEditHours   state.State = "edit_hours"

	StateAdmWaitActAdd state.State = "adm_wait_act_add"
	StateAdmWaitActDel state.State = "adm_wait_act_del"
	StateAdmWaitLocAdd state.State = "adm_wait_loc_add"
	StateAdmWaitLocDel state.State = "adm_wait_loc_del"
)

// Temp-data keys stored in the session between steps.
const (
	tempWorkKind     = "work_kind"
	tempWorkGrp      = "work_grp"
	tempWorkActivity = "work_activity"
	tempLocKind      = "loc_kind"
	tempLocGrp       = "loc_grp"
	tempLocation     = "location"
	tempWorkDate     = "work_date"

	tempQuickWork  = "quick_work"
	tempQuickShift = "quick_shift"
	tempQuickHours = "quick_hours"

	tempEditID   = "edit_id"
	tempEditDate = "edit_date"
)
